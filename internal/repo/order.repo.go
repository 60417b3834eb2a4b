package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"collectible-order/internal/domain"
)

var ErrDuplicateOrder = errors.New("order already exists")

type OrderRepo interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// Save assigns the order id when it is unset.
	Save(ctx context.Context, order *domain.Order) error
	// FindById returns nil, nil when the order does not exist.
	FindById(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	UpdateMemo(ctx context.Context, id uuid.UUID, memo string) error
	FindAll(ctx context.Context, page domain.Page) ([]domain.Order, error)
	FindByDateRange(ctx context.Context, start, end time.Time, page domain.Page) ([]domain.Order, error)
	FindByMember(ctx context.Context, memberID int64, page domain.Page) ([]domain.Order, error)
	FindByMemberAndDateRange(ctx context.Context, memberID int64, start, end time.Time, page domain.Page) ([]domain.Order, error)
}

type orderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepo {
	return &orderRepo{db: db}
}

const orderColumns = `id, member_id, product_id, wallet_address, token_id, memo, order_date`

func (r *orderRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.db, fn)
}

func (r *orderRepo) Save(ctx context.Context, order *domain.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.OrderDate.IsZero() {
		order.OrderDate = time.Now().UTC()
	}

	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO orders (`+orderColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		order.ID, order.MemberID, order.ProductID, order.WalletAddress, order.TokenID, order.Memo, order.OrderDate,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *orderRepo) FindById(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)

	order, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	return &order, nil
}

func (r *orderRepo) UpdateMemo(ctx context.Context, id uuid.UUID, memo string) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `UPDATE orders SET memo = $2 WHERE id = $1`, id, memo)
	if err != nil {
		return fmt.Errorf("update memo: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update memo: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *orderRepo) FindAll(ctx context.Context, page domain.Page) ([]domain.Order, error) {
	return r.list(ctx, ``, page)
}

func (r *orderRepo) FindByDateRange(ctx context.Context, start, end time.Time, page domain.Page) ([]domain.Order, error) {
	return r.list(ctx, `WHERE order_date BETWEEN $1 AND $2`, page, start, end)
}

func (r *orderRepo) FindByMember(ctx context.Context, memberID int64, page domain.Page) ([]domain.Order, error) {
	return r.list(ctx, `WHERE member_id = $1`, page, memberID)
}

func (r *orderRepo) FindByMemberAndDateRange(ctx context.Context, memberID int64, start, end time.Time, page domain.Page) ([]domain.Order, error) {
	return r.list(ctx, `WHERE member_id = $1 AND order_date BETWEEN $2 AND $3`, page, memberID, start, end)
}

func (r *orderRepo) list(ctx context.Context, where string, page domain.Page, args ...any) ([]domain.Order, error) {
	page = page.Normalize()

	direction := "DESC"
	if page.Ascending {
		direction = "ASC"
	}
	n := len(args)
	query := fmt.Sprintf(
		`SELECT %s FROM orders %s ORDER BY order_date %s, id %s LIMIT $%d OFFSET $%d`,
		orderColumns, where, direction, direction, n+1, n+2,
	)
	args = append(args, page.Size, page.Offset())

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, page.Size)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (domain.Order, error) {
	var o domain.Order
	err := s.Scan(
		&o.ID,
		&o.MemberID,
		&o.ProductID,
		&o.WalletAddress,
		&o.TokenID,
		&o.Memo,
		&o.OrderDate,
	)
	o.OrderDate = o.OrderDate.UTC()
	return o, err
}
