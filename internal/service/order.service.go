package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"collectible-order/internal/config"
	"collectible-order/internal/domain"
	"collectible-order/internal/infrastructure/catalog"
	"collectible-order/internal/infrastructure/chain"
	"collectible-order/internal/infrastructure/member"
	"collectible-order/internal/infrastructure/messaging"
	"collectible-order/internal/repo"
)

const EventOrderCreated = "order.created"

type OrderService interface {
	// SubmitOrder charges the product price to the member's wallet, mints
	// the token and records the order. A failed mint is refunded once.
	SubmitOrder(ctx context.Context, memberID, productID int64) (*domain.OrderDetail, error)
	UpdateMemo(ctx context.Context, orderID uuid.UUID, memo string) (*domain.OrderDetail, error)
	// GetAll and GetAllByMember take optional dates; "" means absent.
	GetAll(ctx context.Context, startDate, endDate string, page domain.Page) ([]domain.OrderDetail, error)
	GetAllByMember(ctx context.Context, memberID int64, startDate, endDate string, page domain.Page) ([]domain.OrderDetail, error)
}

// Deps lists the collaborators of the order service. Attempts may be nil,
// in which case purchases are not journaled.
type Deps struct {
	Members  member.Directory
	Catalog  catalog.Catalog
	Payments chain.PaymentGateway
	Minter   chain.TokenMinter
	Orders   repo.OrderRepo
	Attempts repo.AttemptRepo
	Events   messaging.Publisher
	Topic    string
	Timeouts config.Timeouts
	Logger   *slog.Logger
	Now      func() time.Time
}

type orderService struct {
	members  member.Directory
	catalog  catalog.Catalog
	payments chain.PaymentGateway
	minter   chain.TokenMinter
	orders   repo.OrderRepo
	events   messaging.Publisher
	topic    string
	timeouts config.Timeouts
	journal  *journal
	log      *slog.Logger
	now      func() time.Time
}

func NewOrderService(d Deps) OrderService {
	s := &orderService{
		members:  d.Members,
		catalog:  d.Catalog,
		payments: d.Payments,
		minter:   d.Minter,
		orders:   d.Orders,
		events:   d.Events,
		topic:    d.Topic,
		timeouts: d.Timeouts,
		log:      d.Logger,
		now:      d.Now,
	}
	if s.topic == "" {
		s.topic = domain.OrderTopic
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	s.journal = &journal{repo: d.Attempts, log: s.log}
	return s
}

func (s *orderService) SubmitOrder(ctx context.Context, memberID, productID int64) (*domain.OrderDetail, error) {
	log := s.log.With("member_id", memberID, "product_id", productID)

	wallet, err := s.resolveWallet(ctx, memberID)
	if err != nil {
		log.Info("order rejected", "error", err)
		return nil, err
	}
	product, err := s.resolveProduct(ctx, productID)
	if err != nil {
		log.Info("order rejected", "error", err)
		return nil, err
	}
	log = log.With("wallet", wallet, "price", product.Price)

	// Money may move from here on. The rest of the saga ignores caller
	// cancellation and is bounded only by the per-step timeouts.
	ctx = context.WithoutCancel(ctx)
	attempt := s.journal.begin(ctx, memberID, productID, wallet, product.Price)

	if err := s.chargeFee(ctx, product.Price, wallet); err != nil {
		log.Warn("fee payment failed", "error", err)
		s.journal.mark(ctx, attempt, domain.AttemptChargeFailed, "", uuid.Nil)
		return nil, err
	}
	s.journal.mark(ctx, attempt, domain.AttemptCharged, "", uuid.Nil)

	tokenID, err := s.mintToken(ctx, wallet, product.NftInfo)
	if err != nil {
		log.Warn("mint failed, refunding fee", "error", err)
		s.compensate(ctx, log, attempt, product.Price, wallet)
		return nil, err
	}
	log = log.With("token_id", tokenID)
	s.journal.mark(ctx, attempt, domain.AttemptMinted, tokenID, uuid.Nil)

	order := domain.Order{
		MemberID:      memberID,
		ProductID:     productID,
		WalletAddress: wallet,
		TokenID:       tokenID,
		OrderDate:     s.now(),
	}
	if err := s.orders.WithTx(ctx, func(txCtx context.Context) error {
		return s.orders.Save(txCtx, &order)
	}); err != nil {
		// The fee is spent and the token exists; nothing is reversed here.
		log.Error("minted token has no order", "error", err)
		s.journal.mark(ctx, attempt, domain.AttemptPersistFailed, "", uuid.Nil)
		return nil, domain.ErrPersistFailed.Wrap(err)
	}
	log = log.With("order_id", order.ID)
	s.journal.mark(ctx, attempt, domain.AttemptCompleted, "", order.ID)

	detail := domain.NewOrderDetail(order, product, s.lookupMember(ctx, memberID))
	s.publishCreated(ctx, log, detail)

	log.Info("order created")
	return &detail, nil
}

func (s *orderService) resolveWallet(ctx context.Context, memberID int64) (string, error) {
	ctx, cancel := withTimeout(ctx, s.timeouts.Wallet)
	defer cancel()

	wallet, err := s.members.FindWallet(ctx, memberID)
	if err != nil {
		return "", domain.ErrWalletNotFound.Wrap(err)
	}
	wallet = strings.TrimSpace(wallet)
	if wallet == "" {
		return "", domain.ErrWalletNotFound.Withf("member %d has no wallet", memberID)
	}
	return wallet, nil
}

func (s *orderService) resolveProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	ctx, cancel := withTimeout(ctx, s.timeouts.Catalog)
	defer cancel()

	product, err := s.catalog.FindProduct(ctx, productID)
	if err != nil {
		return nil, domain.ErrProductNotFound.Wrap(err)
	}
	if product == nil {
		return nil, domain.ErrProductNotFound.Withf("product %d not found", productID)
	}
	return product, nil
}

func (s *orderService) chargeFee(ctx context.Context, price int64, wallet string) error {
	ctx, cancel := withTimeout(ctx, s.timeouts.Payment)
	defer cancel()

	paid, err := s.payments.ChargeFee(ctx, price, wallet)
	if err != nil {
		return domain.ErrPaymentFailed.Wrap(err)
	}
	if !paid {
		return domain.ErrPaymentFailed.Withf("charge of %d KLAY from %s was declined", price, wallet)
	}
	return nil
}

func (s *orderService) mintToken(ctx context.Context, wallet string, nft domain.NftInfo) (string, error) {
	ctx, cancel := withTimeout(ctx, s.timeouts.Mint)
	defer cancel()

	tokenID, err := s.minter.Mint(ctx, wallet, nft.MetadataURI, nft.ContractAlias)
	if err != nil {
		return "", domain.ErrMintFailed.Wrap(err)
	}
	if strings.TrimSpace(tokenID) == "" {
		return "", domain.ErrMintFailed.Wrap(errors.New("no token id returned"))
	}
	return tokenID, nil
}

// compensate refunds the fee exactly once. A failed refund is logged and
// journaled; the caller still sees MINT_FAILED.
func (s *orderService) compensate(ctx context.Context, log *slog.Logger, attempt *domain.PurchaseAttempt, price int64, wallet string) {
	rctx, cancel := withTimeout(ctx, s.timeouts.Refund)
	defer cancel()

	if err := s.minter.Refund(rctx, price, wallet); err != nil {
		log.Error("refund failed, manual reconciliation required", "error", err)
		s.journal.mark(ctx, attempt, domain.AttemptRefundFailed, "", uuid.Nil)
		return
	}
	s.journal.mark(ctx, attempt, domain.AttemptRefunded, "", uuid.Nil)
}

func (s *orderService) publishCreated(ctx context.Context, log *slog.Logger, detail domain.OrderDetail) {
	ctx, cancel := withTimeout(ctx, s.timeouts.Publish)
	defer cancel()

	event := domain.NewOrderCreatedEvent(detail)
	if err := s.events.Publish(ctx, s.topic, detail.ID.String(), EventOrderCreated, event); err != nil {
		log.Warn("order created event not published", "topic", s.topic, "error", err)
	}
}

func (s *orderService) UpdateMemo(ctx context.Context, orderID uuid.UUID, memo string) (*domain.OrderDetail, error) {
	var order *domain.Order
	err := s.orders.WithTx(ctx, func(txCtx context.Context) error {
		found, err := s.orders.FindById(txCtx, orderID)
		if err != nil {
			return domain.ErrInternal.Wrap(err)
		}
		if found == nil {
			return domain.ErrOrderNotFound.Withf("order %s not found", orderID)
		}
		if err := s.orders.UpdateMemo(txCtx, orderID, memo); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrOrderNotFound.Withf("order %s not found", orderID)
			}
			return domain.ErrPersistFailed.Wrap(err)
		}
		found.Memo = memo
		order = found
		return nil
	})
	if err != nil {
		var oerr *domain.OrderError
		if errors.As(err, &oerr) {
			return nil, oerr
		}
		return nil, domain.ErrPersistFailed.Wrap(err)
	}

	detail := s.enrich(ctx, *order)
	return &detail, nil
}

func (s *orderService) GetAll(ctx context.Context, startDate, endDate string, page domain.Page) ([]domain.OrderDetail, error) {
	r, err := parseDateRange(startDate, endDate, s.now())
	if err != nil {
		return nil, err
	}
	if r != nil && r.empty() {
		return []domain.OrderDetail{}, nil
	}
	page = page.Normalize()

	var orders []domain.Order
	if r == nil {
		orders, err = s.orders.FindAll(ctx, page)
	} else {
		orders, err = s.orders.FindByDateRange(ctx, r.start, r.end, page)
	}
	if err != nil {
		return nil, domain.ErrInternal.Wrap(fmt.Errorf("list orders: %w", err))
	}
	return s.enrichAll(ctx, orders), nil
}

func (s *orderService) GetAllByMember(ctx context.Context, memberID int64, startDate, endDate string, page domain.Page) ([]domain.OrderDetail, error) {
	r, err := parseDateRange(startDate, endDate, s.now())
	if err != nil {
		return nil, err
	}
	if r != nil && r.empty() {
		return []domain.OrderDetail{}, nil
	}
	page = page.Normalize()

	var orders []domain.Order
	if r == nil {
		orders, err = s.orders.FindByMember(ctx, memberID, page)
	} else {
		orders, err = s.orders.FindByMemberAndDateRange(ctx, memberID, r.start, r.end, page)
	}
	if err != nil {
		return nil, domain.ErrInternal.Wrap(fmt.Errorf("list orders of member %d: %w", memberID, err))
	}
	return s.enrichAll(ctx, orders), nil
}

func (s *orderService) enrichAll(ctx context.Context, orders []domain.Order) []domain.OrderDetail {
	out := make([]domain.OrderDetail, 0, len(orders))
	for _, o := range orders {
		out = append(out, s.enrich(ctx, o))
	}
	return out
}

// enrich attaches live product and member data. Lookups that miss or fail
// leave the field nil; they never fail the read.
func (s *orderService) enrich(ctx context.Context, o domain.Order) domain.OrderDetail {
	return domain.NewOrderDetail(o, s.lookupProduct(ctx, o.ProductID), s.lookupMember(ctx, o.MemberID))
}

func (s *orderService) lookupProduct(ctx context.Context, productID int64) *domain.Product {
	ctx, cancel := withTimeout(ctx, s.timeouts.Catalog)
	defer cancel()

	p, err := s.catalog.FindProduct(ctx, productID)
	if err != nil {
		s.log.Warn("product lookup failed", "product_id", productID, "error", err)
		return nil
	}
	return p
}

func (s *orderService) lookupMember(ctx context.Context, memberID int64) *domain.Member {
	ctx, cancel := withTimeout(ctx, s.timeouts.Wallet)
	defer cancel()

	m, err := s.members.FindMember(ctx, memberID)
	if err != nil {
		s.log.Warn("member lookup failed", "member_id", memberID, "error", err)
		return nil
	}
	return m
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
