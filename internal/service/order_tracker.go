package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang-stock-autotrader/internal/broker"
	"golang-stock-autotrader/internal/entity"
	"golang-stock-autotrader/internal/repository"
	"golang-stock-autotrader/pkg/logger"
	"golang-stock-autotrader/pkg/telegram"
)

var (
	ErrInvalidQuantity = errors.New("order quantity must be positive")
	ErrInvalidPrice    = errors.New("order price must be positive")
	// ErrOutcomeNotRecorded means the brokerage answered but the terminal state
	// could not be written; the stored row is still PENDING.
	ErrOutcomeNotRecorded = errors.New("order outcome not recorded")
)

// outcomeWriteTimeout bounds the terminal write, which runs detached from the
// caller's context so an expired cycle or request cannot leave a row PENDING.
const outcomeWriteTimeout = 5 * time.Second

// PlaceOrderRequest describes one order to submit.
type PlaceOrderRequest struct {
	Account   string
	StockCode string
	Type      entity.OrderType
	Quantity  int64
	Price     int64
}

// OrderTracker submits orders and records their PENDING to SUCCESS/FAILED lifecycle.
type OrderTracker interface {
	// Place writes a PENDING row, calls the brokerage and moves the row to its
	// terminal state. A brokerage failure yields a FAILED order and a nil error;
	// the error is reserved for invalid input and for failing to record PENDING
	// or the terminal state (ErrOutcomeNotRecorded).
	Place(ctx context.Context, cred broker.Credential, req PlaceOrderRequest) (*entity.Order, error)
}

type orderTracker struct {
	broker   broker.Client
	orders   repository.OrderRepository
	activity ActivityLogger
	notifier telegram.Notifier
	log      *logger.Logger
}

func NewOrderTracker(
	brokerClient broker.Client,
	orders repository.OrderRepository,
	activity ActivityLogger,
	notifier telegram.Notifier,
	log *logger.Logger,
) OrderTracker {
	if notifier == nil {
		notifier = telegram.NopNotifier{}
	}
	return &orderTracker{
		broker:   brokerClient,
		orders:   orders,
		activity: activity,
		notifier: notifier,
		log:      log,
	}
}

func (t *orderTracker) Place(ctx context.Context, cred broker.Credential, req PlaceOrderRequest) (*entity.Order, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if req.Price <= 0 {
		return nil, ErrInvalidPrice
	}
	if req.Type != entity.OrderTypeBuy && req.Type != entity.OrderTypeSell {
		return nil, fmt.Errorf("invalid order type %q", req.Type)
	}

	order := &entity.Order{
		StockCode: req.StockCode,
		OrderType: req.Type,
		Quantity:  req.Quantity,
		Price:     req.Price,
		Status:    entity.OrderStatusPending,
	}
	if err := t.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to record pending order: %w", err)
	}

	summary := fmt.Sprintf("Order #%d %s %d @ %d", order.ID, order.OrderType, order.Quantity, order.Price)
	brokerErr := t.broker.PlaceOrder(ctx, cred, req.Type, req.Account, req.StockCode, req.Quantity, req.Price)

	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), outcomeWriteTimeout)
	defer cancel()

	if brokerErr != nil {
		order.Status = entity.OrderStatusFailed
		order.ErrorMessage = brokerErr.Error()
		t.activity.Error(recordCtx, summary+" failed", brokerErr,
			logger.StringField("stock_code", req.StockCode))
	} else {
		order.Status = entity.OrderStatusSuccess
		t.activity.Info(recordCtx, summary+" placed",
			logger.StringField("stock_code", req.StockCode))
	}

	if err := t.orders.UpdateStatus(recordCtx, order.ID, order.Status, order.ErrorMessage); err != nil {
		t.log.ErrorContext(recordCtx, "Failed to record order outcome",
			logger.ErrorField(err),
			logger.Field("order_id", order.ID),
			logger.StringField("status", string(order.Status)))
		return nil, fmt.Errorf("%w: order #%d was %s at the brokerage: %w", ErrOutcomeNotRecorded, order.ID, order.Status, err)
	}
	if stored, err := t.orders.FindByID(recordCtx, order.ID); err == nil {
		order = stored
	}

	if err := t.notifier.SendMessage(telegram.FormatOrderResultForTelegram(order)); err != nil {
		t.log.WarnContext(recordCtx, "Failed to send order notification", logger.ErrorField(err))
	}
	return order, nil
}
