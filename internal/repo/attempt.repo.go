package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"collectible-order/internal/domain"
)

// AttemptRepo journals purchase attempts so that charges without a matching
// order can be reconciled by hand.
type AttemptRepo interface {
	Create(ctx context.Context, attempt *domain.PurchaseAttempt) error
	// UpdateStatus records a transition. Empty tokenID and nil orderID leave
	// the stored values untouched.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AttemptStatus, tokenID string, orderID uuid.UUID) error
	FindById(ctx context.Context, id uuid.UUID) (*domain.PurchaseAttempt, error)
	// FindUnresolved returns attempts that need manual attention: failed
	// compensations, failed persistence, and in-flight attempts last touched
	// before staleBefore.
	FindUnresolved(ctx context.Context, staleBefore time.Time, limit int) ([]domain.PurchaseAttempt, error)
}

type attemptRepo struct {
	db *sql.DB
}

func NewAttemptRepo(db *sql.DB) AttemptRepo {
	return &attemptRepo{db: db}
}

const attemptColumns = `id, member_id, product_id, wallet_address, price, token_id, order_id, status, created_at, updated_at`

func (r *attemptRepo) Create(ctx context.Context, a *domain.PurchaseAttempt) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = a.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO purchase_attempts (`+attemptColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.MemberID, a.ProductID, a.WalletAddress, a.Price, a.TokenID, nullUUID(a.OrderID), a.Status, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert purchase attempt: %w", err)
	}
	return nil
}

func (r *attemptRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AttemptStatus, tokenID string, orderID uuid.UUID) error {
	const query = `
		UPDATE purchase_attempts
		SET status = $2,
		    token_id = COALESCE(NULLIF($3, ''), token_id),
		    order_id = COALESCE($4, order_id),
		    updated_at = now()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, status, tokenID, nullUUID(orderID))
	if err != nil {
		return fmt.Errorf("update purchase attempt: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *attemptRepo) FindById(ctx context.Context, id uuid.UUID) (*domain.PurchaseAttempt, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+attemptColumns+` FROM purchase_attempts WHERE id = $1`, id)
	a, err := scanAttempt(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find purchase attempt: %w", err)
	}
	return &a, nil
}

func (r *attemptRepo) FindUnresolved(ctx context.Context, staleBefore time.Time, limit int) ([]domain.PurchaseAttempt, error) {
	query := `
		SELECT ` + attemptColumns + ` FROM purchase_attempts
		WHERE status IN ($1, $2)
		   OR (status IN ($3, $4, $5) AND updated_at < $6)
		ORDER BY updated_at ASC
		LIMIT $7
	`
	rows, err := r.db.QueryContext(ctx, query,
		domain.AttemptRefundFailed, domain.AttemptPersistFailed,
		domain.AttemptCharging, domain.AttemptCharged, domain.AttemptMinted,
		staleBefore, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query purchase attempts: %w", err)
	}
	defer rows.Close()

	var attempts []domain.PurchaseAttempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

func scanAttempt(s scanner) (domain.PurchaseAttempt, error) {
	var (
		a       domain.PurchaseAttempt
		orderID uuid.NullUUID
	)
	err := s.Scan(
		&a.ID,
		&a.MemberID,
		&a.ProductID,
		&a.WalletAddress,
		&a.Price,
		&a.TokenID,
		&orderID,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if orderID.Valid {
		a.OrderID = orderID.UUID
	}
	return a, err
}

func nullUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}
