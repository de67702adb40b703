package service

import (
	"context"
	"fmt"
	"time"

	"golang-stock-autotrader/internal/broker"
	"golang-stock-autotrader/internal/entity"
	"golang-stock-autotrader/internal/repository"
	"golang-stock-autotrader/pkg/logger"
	"golang-stock-autotrader/pkg/utils"
)

// BrokerageService exposes the manual trading operations of the HTTP API.
type BrokerageService interface {
	CurrentPrice(ctx context.Context, cred broker.Credential, stockCode string) (int64, error)
	PlaceOrder(ctx context.Context, cred broker.Credential, req PlaceOrderRequest) (*entity.Order, error)
	HoldingQuantity(ctx context.Context, cred broker.Credential, account, stockCode string) (int64, error)
	ClearOrders(ctx context.Context, cred broker.Credential, account, stockCode string) (ReconcileResult, error)
	TotalEvaluation(ctx context.Context, cred broker.Credential, account string) (int64, error)
}

type brokerageService struct {
	broker     broker.Client
	prices     repository.PriceRepository
	statuses   repository.AccountStatusRepository
	cache      repository.MarketCacheRepository
	tracker    OrderTracker
	reconciler Reconciler
	activity   ActivityLogger
	log        *logger.Logger
}

func NewBrokerageService(
	brokerClient broker.Client,
	prices repository.PriceRepository,
	statuses repository.AccountStatusRepository,
	cache repository.MarketCacheRepository,
	tracker OrderTracker,
	reconciler Reconciler,
	activity ActivityLogger,
	log *logger.Logger,
) BrokerageService {
	if cache == nil {
		cache = repository.NewMarketCacheRepository(nil)
	}
	return &brokerageService{
		broker:     brokerClient,
		prices:     prices,
		statuses:   statuses,
		cache:      cache,
		tracker:    tracker,
		reconciler: reconciler,
		activity:   activity,
		log:        log,
	}
}

// CurrentPrice fetches a quote and records it in price history.
func (s *brokerageService) CurrentPrice(ctx context.Context, cred broker.Credential, stockCode string) (int64, error) {
	price, err := s.broker.Quote(ctx, cred, stockCode)
	if err != nil {
		s.activity.Error(ctx, fmt.Sprintf("Failed to fetch price of %s", stockCode), err)
		return 0, err
	}

	if err := s.prices.Create(ctx, &entity.PriceData{StockCode: stockCode, Price: price}); err != nil {
		s.log.ErrorContext(ctx, "Failed to save price", logger.ErrorField(err), logger.StringField("stock_code", stockCode))
	}
	if err := s.cache.SetLastPrice(ctx, stockCode, price, utils.TimeNowKST(), 10*time.Minute); err != nil {
		s.log.WarnContext(ctx, "Failed to cache last price", logger.ErrorField(err))
	}
	s.activity.Info(ctx, fmt.Sprintf("Price of %s fetched: %d", stockCode, price))
	return price, nil
}

func (s *brokerageService) PlaceOrder(ctx context.Context, cred broker.Credential, req PlaceOrderRequest) (*entity.Order, error) {
	return s.tracker.Place(ctx, cred, req)
}

// HoldingQuantity returns the held quantity and records an account snapshot
// when the total evaluation can be fetched as well.
func (s *brokerageService) HoldingQuantity(ctx context.Context, cred broker.Credential, account, stockCode string) (int64, error) {
	qty, err := s.broker.HoldingQuantity(ctx, cred, account, stockCode)
	if err != nil {
		s.activity.Error(ctx, fmt.Sprintf("Failed to fetch holding quantity of %s", stockCode), err)
		return 0, err
	}

	evaluation, err := s.broker.TotalEvaluation(ctx, cred, account)
	if err != nil {
		s.log.WarnContext(ctx, "Skipping account snapshot", logger.ErrorField(err))
		return qty, nil
	}
	if err := s.statuses.Create(ctx, &entity.AccountStatus{
		Account:         account,
		StockCode:       stockCode,
		HoldingQuantity: qty,
		TotalEvaluation: evaluation,
	}); err != nil {
		s.log.ErrorContext(ctx, "Failed to save account status", logger.ErrorField(err))
	}
	return qty, nil
}

func (s *brokerageService) ClearOrders(ctx context.Context, cred broker.Credential, account, stockCode string) (ReconcileResult, error) {
	return s.reconciler.Reconcile(ctx, cred, account, stockCode)
}

func (s *brokerageService) TotalEvaluation(ctx context.Context, cred broker.Credential, account string) (int64, error) {
	evaluation, err := s.broker.TotalEvaluation(ctx, cred, account)
	if err != nil {
		s.activity.Error(ctx, "Failed to fetch total evaluation", err)
		return 0, err
	}
	return evaluation, nil
}
