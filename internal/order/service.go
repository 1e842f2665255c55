package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"organic-be/internal/logger"
	"organic-be/internal/metrics"
	"organic-be/internal/payment"
	"organic-be/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	Initiate(ctx context.Context, input InitiateInput) (*Checkout, error)
	MarkPaid(ctx context.Context, tranID, valID string) error
	MarkFailed(ctx context.Context, tranID string) error
	Get(ctx context.Context, tranID string) (*Order, error)
	Exists(ctx context.Context, tranID string) (bool, error)
	ListByEmail(ctx context.Context, email string) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
}

type Options struct {
	// ServerURL is the public base URL the gateway posts callbacks to.
	ServerURL      string
	GatewayTimeout time.Duration
}

type service struct {
	repo      Repository
	gateway   payment.Gateway
	serverURL string
	timeout   time.Duration
	newID     func() (string, error)
}

func NewService(repo Repository, gateway payment.Gateway, opts Options) Service {
	if opts.GatewayTimeout <= 0 {
		opts.GatewayTimeout = 15 * time.Second
	}
	return &service{
		repo:      repo,
		gateway:   gateway,
		serverURL: strings.TrimRight(opts.ServerURL, "/"),
		timeout:   opts.GatewayTimeout,
		newID:     utils.GenerateTransactionID,
	}
}

// Initiate stores a pending order and opens a gateway session for it. The
// row exists before the gateway can call back; if the gateway fails the row
// is removed again.
func (s *service) Initiate(ctx context.Context, input InitiateInput) (*Checkout, error) {
	log := logger.FromCtx(ctx)

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	o, err := s.createPending(ctx, input)
	if err != nil {
		return nil, err
	}
	log = log.With(zap.String("tran_id", o.TransactionID))

	gwCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	session, err := s.gateway.InitSession(gwCtx, payment.SessionRequest{
		TransactionID:   o.TransactionID,
		Amount:          o.TotalAmount,
		Currency:        o.Currency,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		CustomerAddress: o.CustomerAddress,
		SuccessURL:      s.serverURL + "/payment/success/" + o.TransactionID,
		FailURL:         s.serverURL + "/payment/fail/" + o.TransactionID,
		CancelURL:       s.serverURL + "/payment/cancel/" + o.TransactionID,
		IPNURL:          s.serverURL + "/ipn",
	})
	if err != nil {
		metrics.OrdersTotal.WithLabelValues("gateway_error").Inc()
		log.Error("gateway session failed, discarding pending order", zap.Error(err))

		if _, delErr := s.repo.DeleteUnpaid(context.WithoutCancel(ctx), o.TransactionID); delErr != nil {
			log.Error("failed to discard pending order", zap.Error(delErr))
		}
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	metrics.OrdersTotal.WithLabelValues("initiated").Inc()
	log.Info("order initiated",
		zap.Float64("amount", o.TotalAmount),
		zap.String("currency", o.Currency),
	)

	return &Checkout{URL: session.GatewayPageURL, TransactionID: o.TransactionID}, nil
}

// createPending inserts the unpaid row, drawing a fresh id once on collision.
func (s *service) createPending(ctx context.Context, input InitiateInput) (Order, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		tranID, err := s.newID()
		if err != nil {
			return Order{}, err
		}

		o, err := s.repo.Create(ctx, Order{
			TransactionID:   tranID,
			TotalAmount:     input.Price,
			Currency:        strings.ToUpper(input.Currency),
			CustomerName:    input.Name,
			CustomerEmail:   input.Email,
			CustomerAddress: input.Address,
		})
		if errors.Is(err, ErrDuplicateTransaction) {
			logger.FromCtx(ctx).Warn("transaction id collision, regenerating", zap.String("tran_id", tranID))
			lastErr = err
			continue
		}
		if err != nil {
			return Order{}, fmt.Errorf("create order: %w", err)
		}
		return o, nil
	}
	return Order{}, fmt.Errorf("create order: %w", lastErr)
}

// MarkPaid flips the order to paid exactly once. Repeating it for an order
// that is already paid succeeds without changing anything.
func (s *service) MarkPaid(ctx context.Context, tranID, valID string) error {
	log := logger.FromCtx(ctx).With(zap.String("tran_id", tranID))

	var v *string
	if valID != "" {
		v = &valID
	}

	changed, err := s.repo.MarkPaid(ctx, tranID, v)
	if err != nil {
		return fmt.Errorf("mark paid: %w", err)
	}
	if changed {
		metrics.OrdersTotal.WithLabelValues("paid").Inc()
		log.Info("order marked as paid")
		return nil
	}

	o, err := s.repo.GetByTransactionID(ctx, tranID)
	if err != nil {
		return err
	}
	if o.PaidStatus {
		log.Info("order already paid")
		return nil
	}
	// Row appeared unpaid after the update matched nothing; treat as a lost race.
	return fmt.Errorf("mark paid: order %s not updated", tranID)
}

// MarkFailed removes an unpaid order. A paid order is never removed.
func (s *service) MarkFailed(ctx context.Context, tranID string) error {
	log := logger.FromCtx(ctx).With(zap.String("tran_id", tranID))

	deleted, err := s.repo.DeleteUnpaid(ctx, tranID)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	if deleted {
		metrics.OrdersTotal.WithLabelValues("failed").Inc()
		log.Info("order marked as failed and removed")
		return nil
	}

	o, err := s.repo.GetByTransactionID(ctx, tranID)
	if err != nil {
		return err
	}
	if o.PaidStatus {
		log.Warn("failure callback for a paid order ignored")
		return ErrAlreadyPaid
	}
	return fmt.Errorf("mark failed: order %s not removed", tranID)
}

func (s *service) Get(ctx context.Context, tranID string) (*Order, error) {
	return s.repo.GetByTransactionID(ctx, tranID)
}

func (s *service) Exists(ctx context.Context, tranID string) (bool, error) {
	return s.repo.Exists(ctx, tranID)
}

func (s *service) ListByEmail(ctx context.Context, email string) ([]Order, error) {
	orders, err := s.repo.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if len(orders) == 0 {
		return nil, ErrOrderNotFound
	}
	return orders, nil
}

func (s *service) ListAll(ctx context.Context) ([]Order, error) {
	orders, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}
