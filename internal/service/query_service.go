package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"golang-stock-autotrader/internal/dto"
	"golang-stock-autotrader/internal/entity"
	"golang-stock-autotrader/internal/repository"
	"golang-stock-autotrader/pkg/logger"
)

// ErrInvalidSettings is returned when a settings update would break the strategy.
var ErrInvalidSettings = errors.New("invalid trading settings")

const (
	DefaultQueryLimit = 100
	MaxQueryLimit     = 1000
)

// QueryService serves the read side of the persisted trading data.
type QueryService interface {
	PriceHistory(ctx context.Context, stockCode string, limit int) ([]entity.PriceData, error)
	MovingAverages(ctx context.Context, stockCode string, count int) ([]entity.MovingAverage, error)
	Signals(ctx context.Context, stockCode string, limit int) ([]entity.TradingSignal, error)
	Orders(ctx context.Context, stockCode string, limit int) ([]entity.Order, error)
	Statistics(ctx context.Context, stockCode string, days int) (dto.Statistics, error)
	Logs(ctx context.Context, level entity.LogLevel, limit int) ([]entity.TradingLog, error)
	LatestAccountStatus(ctx context.Context, stockCode string) (*entity.AccountStatus, error)
	TradingSettings(ctx context.Context, stockCode string) (*entity.TradingSetting, error)
	UpdateTradingSettings(ctx context.Context, req dto.TradingSettingRequest) (*entity.TradingSetting, error)
	Dashboard(ctx context.Context, stockCode string) (*dto.DashboardResponse, error)
}

type queryService struct {
	prices   repository.PriceRepository
	averages repository.MovingAverageRepository
	signals  repository.SignalRepository
	orders   repository.OrderRepository
	logs     repository.TradingLogRepository
	statuses repository.AccountStatusRepository
	settings repository.TradingSettingRepository
	activity ActivityLogger
	log      *logger.Logger
}

func NewQueryService(
	prices repository.PriceRepository,
	averages repository.MovingAverageRepository,
	signals repository.SignalRepository,
	orders repository.OrderRepository,
	logs repository.TradingLogRepository,
	statuses repository.AccountStatusRepository,
	settings repository.TradingSettingRepository,
	activity ActivityLogger,
	log *logger.Logger,
) QueryService {
	return &queryService{
		prices:   prices,
		averages: averages,
		signals:  signals,
		orders:   orders,
		logs:     logs,
		statuses: statuses,
		settings: settings,
		activity: activity,
		log:      log,
	}
}

// ClampLimit maps non-positive limits to the default and caps large ones.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultQueryLimit
	}
	if limit > MaxQueryLimit {
		return MaxQueryLimit
	}
	return limit
}

func (s *queryService) PriceHistory(ctx context.Context, stockCode string, limit int) ([]entity.PriceData, error) {
	return s.prices.FindRecent(ctx, stockCode, ClampLimit(limit))
}

func (s *queryService) MovingAverages(ctx context.Context, stockCode string, count int) ([]entity.MovingAverage, error) {
	return s.averages.FindRecent(ctx, stockCode, ClampLimit(count))
}

func (s *queryService) Signals(ctx context.Context, stockCode string, limit int) ([]entity.TradingSignal, error) {
	return s.signals.FindRecent(ctx, stockCode, ClampLimit(limit))
}

func (s *queryService) Orders(ctx context.Context, stockCode string, limit int) ([]entity.Order, error) {
	return s.orders.FindRecent(ctx, stockCode, ClampLimit(limit))
}

// Statistics aggregates orders of the last days days.
func (s *queryService) Statistics(ctx context.Context, stockCode string, days int) (dto.Statistics, error) {
	if days <= 0 {
		days = 1
	}
	return s.orders.Statistics(ctx, stockCode, time.Now().AddDate(0, 0, -days))
}

func (s *queryService) Logs(ctx context.Context, level entity.LogLevel, limit int) ([]entity.TradingLog, error) {
	return s.logs.FindRecent(ctx, level, ClampLimit(limit))
}

func (s *queryService) LatestAccountStatus(ctx context.Context, stockCode string) (*entity.AccountStatus, error) {
	return s.statuses.Latest(ctx, stockCode)
}

// TradingSettings returns the stored settings or the defaults when none exist yet.
func (s *queryService) TradingSettings(ctx context.Context, stockCode string) (*entity.TradingSetting, error) {
	setting, err := s.settings.FindByStockCode(ctx, stockCode)
	if errors.Is(err, repository.ErrNotFound) {
		return entity.DefaultTradingSetting(stockCode), nil
	}
	return setting, err
}

func (s *queryService) UpdateTradingSettings(ctx context.Context, req dto.TradingSettingRequest) (*entity.TradingSetting, error) {
	if req.StockCode == "" {
		return nil, fmt.Errorf("%w: stock_code is required", ErrInvalidSettings)
	}
	setting, err := s.TradingSettings(ctx, req.StockCode)
	if err != nil {
		return nil, err
	}

	if req.IsActive != nil {
		setting.IsActive = *req.IsActive
	}
	if req.MAShortPeriod != nil {
		setting.MAShortPeriod = *req.MAShortPeriod
	}
	if req.MALongPeriod != nil {
		setting.MALongPeriod = *req.MALongPeriod
	}
	if req.MaxBuyAmount != nil {
		setting.MaxBuyAmount = *req.MaxBuyAmount
	}
	if len(req.AdditionalSettings) > 0 {
		setting.AdditionalSettings = datatypes.JSON(req.AdditionalSettings)
	}

	switch {
	case setting.MAShortPeriod <= 0 || setting.MALongPeriod <= 0:
		return nil, fmt.Errorf("%w: periods must be positive", ErrInvalidSettings)
	case setting.MAShortPeriod >= setting.MALongPeriod:
		return nil, fmt.Errorf("%w: ma_short_period must be below ma_long_period", ErrInvalidSettings)
	case setting.MaxBuyAmount < 0:
		return nil, fmt.Errorf("%w: max_buy_amount must not be negative", ErrInvalidSettings)
	}

	if err := s.settings.Upsert(ctx, setting); err != nil {
		return nil, err
	}
	s.activity.Info(ctx, fmt.Sprintf("Trading settings updated for %s: active=%t MA%d/MA%d max_buy=%d",
		setting.StockCode, setting.IsActive, setting.MAShortPeriod, setting.MALongPeriod, setting.MaxBuyAmount))
	return s.settings.FindByStockCode(ctx, setting.StockCode)
}

// Dashboard collects the latest state of a stock. Missing pieces are left empty.
func (s *queryService) Dashboard(ctx context.Context, stockCode string) (*dto.DashboardResponse, error) {
	resp := &dto.DashboardResponse{StockCode: stockCode, GeneratedAt: time.Now()}

	latest, err := s.prices.Latest(ctx, stockCode)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	resp.LatestPrice = latest

	if resp.MovingAverages, err = s.averages.FindRecent(ctx, stockCode, 20); err != nil {
		return nil, err
	}
	if resp.RecentOrders, err = s.orders.FindRecent(ctx, stockCode, 10); err != nil {
		return nil, err
	}
	if resp.Statistics, err = s.Statistics(ctx, stockCode, 7); err != nil {
		return nil, err
	}
	if resp.Settings, err = s.TradingSettings(ctx, stockCode); err != nil {
		return nil, err
	}
	status, err := s.statuses.Latest(ctx, stockCode)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	resp.AccountStatus = status
	if resp.RecentLogs, err = s.logs.FindRecent(ctx, "", 10); err != nil {
		return nil, err
	}
	return resp, nil
}
