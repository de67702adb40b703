package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"golang-stock-autotrader/internal/broker"
	"golang-stock-autotrader/internal/dto"
	"golang-stock-autotrader/internal/entity"
	"golang-stock-autotrader/internal/indicator"
	"golang-stock-autotrader/internal/repository"
	"golang-stock-autotrader/internal/signal"
	"golang-stock-autotrader/pkg/logger"
	"golang-stock-autotrader/pkg/utils"
)

// TradingConfig configures one trading loop for one account and stock.
type TradingConfig struct {
	Account      string
	StockCode    string
	PollInterval time.Duration
	CycleTimeout time.Duration
	WindowSize   int
	LockEnabled  bool
}

// TradingDependencies are the collaborators of the trading loop.
type TradingDependencies struct {
	Broker         broker.Client
	Credentials    CredentialProvider
	Prices         repository.PriceRepository
	MovingAverages repository.MovingAverageRepository
	Signals        repository.SignalRepository
	Settings       repository.TradingSettingRepository
	Orders         repository.OrderRepository
	Cache          repository.MarketCacheRepository
	Tracker        OrderTracker
	Reconciler     Reconciler
	Account        AccountService
	Activity       ActivityLogger
	Logger         *logger.Logger
}

// CycleResult describes what one poll cycle did.
type CycleResult struct {
	Price   int64
	Short   decimal.NullDecimal
	Long    decimal.NullDecimal
	Signal  signal.Type
	Order   *entity.Order
	Skipped string
}

const (
	SkipInactive   = "inactive"
	SkipLockHeld   = "lock held by another trader"
	SkipQuote      = "quote unavailable"
	SkipCollecting = "collecting prices"
)

// TradingService runs the moving average crossover loop. RunCycle is not safe
// for concurrent use; Run drives it from a single goroutine.
type TradingService struct {
	cfg        TradingConfig
	deps       TradingDependencies
	log        *logger.Logger
	instanceID string

	window  *indicator.Window
	setting *entity.TradingSetting
	// prev is the unrounded pair of the last cycle; stored rows are only read after a restart.
	prev signal.Pair
}

func NewTradingService(cfg TradingConfig, deps TradingDependencies) *TradingService {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Minute
	}
	if cfg.CycleTimeout <= 0 {
		cfg.CycleTimeout = cfg.PollInterval
	}
	if deps.Cache == nil {
		deps.Cache = repository.NewMarketCacheRepository(nil)
	}
	return &TradingService{
		cfg:        cfg,
		deps:       deps,
		log:        deps.Logger,
		instanceID: uuid.NewString(),
		window:     indicator.NewWindow(cfg.WindowSize),
	}
}

// Init loads or creates the settings row and warms the price window from storage.
func (s *TradingService) Init(ctx context.Context) error {
	setting, err := s.loadSetting(ctx)
	if err != nil {
		return err
	}

	warmup := max(setting.MALongPeriod, setting.MAShortPeriod)
	s.window.Grow(warmup)
	prices, err := s.deps.Prices.RecentPrices(ctx, s.cfg.StockCode, warmup)
	if err != nil {
		return fmt.Errorf("load recent prices: %w", err)
	}
	for _, p := range prices {
		s.window.Add(p)
	}

	s.deps.Activity.Info(ctx, fmt.Sprintf("Trading started for %s (MA%d/MA%d, max buy %d, %d prices loaded)",
		s.cfg.StockCode, setting.MAShortPeriod, setting.MALongPeriod, setting.MaxBuyAmount, len(prices)),
		logger.StringField("stock_code", s.cfg.StockCode))
	return nil
}

// loadSetting returns the stored settings, creating the defaults on first use.
func (s *TradingService) loadSetting(ctx context.Context) (*entity.TradingSetting, error) {
	setting, err := s.deps.Settings.FindByStockCode(ctx, s.cfg.StockCode)
	if errors.Is(err, repository.ErrNotFound) {
		setting = entity.DefaultTradingSetting(s.cfg.StockCode)
		if err := s.deps.Settings.Upsert(ctx, setting); err != nil {
			return nil, fmt.Errorf("create default trading settings: %w", err)
		}
		s.deps.Activity.Info(ctx, "Created default trading settings", logger.StringField("stock_code", s.cfg.StockCode))
	} else if err != nil {
		return nil, fmt.Errorf("load trading settings: %w", err)
	}
	s.setting = setting
	return setting, nil
}

// currentSetting refreshes settings so changes made through the API apply on the next cycle.
func (s *TradingService) currentSetting(ctx context.Context) *entity.TradingSetting {
	setting, err := s.deps.Settings.FindByStockCode(ctx, s.cfg.StockCode)
	if err == nil {
		s.setting = setting
	} else {
		s.log.WarnContext(ctx, "Using cached trading settings", logger.ErrorField(err))
	}
	if s.setting == nil {
		s.setting = entity.DefaultTradingSetting(s.cfg.StockCode)
	}
	return s.setting
}

// RunCycle performs one poll: quote, averages, signal, persistence, reconciliation and trading.
func (s *TradingService) RunCycle(ctx context.Context) (*CycleResult, error) {
	code := s.cfg.StockCode
	ctx = logger.WithContext(ctx, logger.StringField("stock_code", code))
	result := &CycleResult{Signal: signal.None}

	setting := s.currentSetting(ctx)
	if !setting.IsActive {
		result.Skipped = SkipInactive
		s.log.DebugContext(ctx, "Trading is inactive, skipping cycle")
		return result, nil
	}
	// Periods may have been raised through the API since the last cycle.
	s.window.Grow(max(setting.MALongPeriod, setting.MAShortPeriod))

	if s.cfg.LockEnabled {
		ok, err := s.deps.Cache.AcquireLock(ctx, s.cfg.Account, code, s.instanceID, 2*s.cfg.PollInterval)
		if err != nil {
			return result, fmt.Errorf("acquire trader lock: %w", err)
		}
		if !ok {
			result.Skipped = SkipLockHeld
			s.deps.Activity.Warn(ctx, "Another trader holds the account lock, skipping cycle")
			return result, nil
		}
	}

	cred, err := s.deps.Credentials.Credential(ctx)
	if err != nil {
		s.deps.Activity.Error(ctx, "Failed to resolve broker credential", err)
		result.Skipped = SkipQuote
		return result, err
	}

	price, err := s.deps.Broker.Quote(ctx, cred, code)
	if err == nil && price <= 0 {
		err = fmt.Errorf("non-positive quote %d", price)
	}
	if err != nil {
		s.deps.Activity.Error(ctx, "Failed to fetch current price", err)
		result.Skipped = SkipQuote
		return result, err
	}
	result.Price = price

	s.window.Add(price)
	if err := s.deps.Cache.SetLastPrice(ctx, code, price, utils.TimeNowKST(), 2*s.cfg.PollInterval); err != nil {
		s.log.WarnContext(ctx, "Failed to cache last price", logger.ErrorField(err))
	}

	result.Short = s.window.SMA(setting.MAShortPeriod)
	result.Long = s.window.SMA(setting.MALongPeriod)

	if err := s.deps.Prices.Create(ctx, &entity.PriceData{StockCode: code, Price: price}); err != nil {
		s.deps.Activity.Error(ctx, "Failed to save price", err)
	}

	curr := signal.Pair{Short: result.Short, Long: result.Long}
	prev := s.prev
	if !prev.Complete() {
		if last, err := s.deps.MovingAverages.Latest(ctx, code); err == nil {
			prev = signal.Pair{Short: last.MAShort, Long: last.MALong}
		} else if !errors.Is(err, repository.ErrNotFound) {
			s.log.WarnContext(ctx, "Failed to load previous moving averages", logger.ErrorField(err))
		}
	}
	result.Signal = signal.Detect(prev, curr)
	s.prev = curr

	if err := s.deps.MovingAverages.Create(ctx, &entity.MovingAverage{
		StockCode: code,
		Price:     price,
		MAShort:   indicator.Rounded(result.Short),
		MALong:    indicator.Rounded(result.Long),
	}); err != nil {
		s.deps.Activity.Error(ctx, "Failed to save moving averages", err)
	}

	if !curr.Complete() {
		result.Skipped = SkipCollecting
		s.log.InfoContext(ctx, "Collecting prices",
			logger.Int64Field("price", price),
			logger.IntField("collected", s.window.Len()),
			logger.IntField("required", setting.MALongPeriod))
		return result, nil
	}

	s.recordSignal(ctx, price, result)

	if _, err := s.deps.Reconciler.Reconcile(ctx, cred, s.cfg.Account, code); err != nil {
		s.log.WarnContext(ctx, "Reconciliation failed, continuing", logger.ErrorField(err))
	}

	order, err := s.trade(ctx, cred, setting, price, result.Signal)
	if err != nil {
		s.deps.Activity.Error(ctx, fmt.Sprintf("Failed to execute %s", result.Signal), err)
	}
	result.Order = order

	if _, err := s.deps.Account.Snapshot(ctx, cred, s.cfg.Account, code); err != nil {
		s.log.WarnContext(ctx, "Failed to refresh account status", logger.ErrorField(err))
	}

	return result, nil
}

func (s *TradingService) recordSignal(ctx context.Context, price int64, result *CycleResult) {
	code := s.cfg.StockCode
	if err := s.deps.Signals.Create(ctx, &entity.TradingSignal{
		StockCode: code,
		Signal:    string(result.Signal),
		Price:     price,
		MAShort:   indicator.Rounded(result.Short),
		MALong:    indicator.Rounded(result.Long),
	}); err != nil {
		s.deps.Activity.Error(ctx, "Failed to save trading signal", err)
	}
	s.deps.Activity.Info(ctx, fmt.Sprintf("Price %d, short MA %s, long MA %s, signal %s",
		price, result.Short.Decimal.StringFixed(indicator.Scale), result.Long.Decimal.StringFixed(indicator.Scale), result.Signal))
}

// trade turns a signal into at most one order.
func (s *TradingService) trade(ctx context.Context, cred broker.Credential, setting *entity.TradingSetting, price int64, sig signal.Type) (*entity.Order, error) {
	code := s.cfg.StockCode
	var (
		side     entity.OrderType
		quantity int64
	)

	switch sig {
	case signal.Buy:
		qty, err := s.deps.Broker.BuyingPower(ctx, cred, s.cfg.Account, code, price)
		if err != nil {
			return nil, fmt.Errorf("fetch buying power: %w", err)
		}
		if setting.MaxBuyAmount > 0 {
			if limit := setting.MaxBuyAmount / price; qty > limit {
				qty = limit
			}
		}
		if qty <= 0 {
			s.deps.Activity.Info(ctx, "Buy signal but no affordable quantity")
			return nil, nil
		}
		side, quantity = entity.OrderTypeBuy, qty
	case signal.Sell:
		qty, err := s.deps.Broker.HoldingQuantity(ctx, cred, s.cfg.Account, code)
		if err != nil {
			return nil, fmt.Errorf("fetch holding quantity: %w", err)
		}
		if qty <= 0 {
			s.deps.Activity.Info(ctx, "Sell signal but nothing is held")
			return nil, nil
		}
		side, quantity = entity.OrderTypeSell, qty
	default:
		return nil, nil
	}

	return s.deps.Tracker.Place(ctx, cred, PlaceOrderRequest{
		Account:   s.cfg.Account,
		StockCode: code,
		Type:      side,
		Quantity:  quantity,
		Price:     price,
	})
}

// Run executes a cycle immediately and then every poll interval until ctx is done.
// A failing or panicking cycle is logged and the loop continues.
func (s *TradingService) Run(ctx context.Context) error {
	if err := s.Init(ctx); err != nil {
		return err
	}

	s.safeCycle(ctx)

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.safeCycle(ctx)
		case <-ctx.Done():
			s.log.Info("Trading loop stopping due to context cancellation")
			return nil
		}
	}
}

func (s *TradingService) safeCycle(ctx context.Context) {
	cycleCtx, cancel := context.WithTimeout(ctx, s.cfg.CycleTimeout)
	defer cancel()

	err := utils.Recover(func() error {
		_, err := s.RunCycle(cycleCtx)
		return err
	})
	if err != nil && ctx.Err() == nil {
		s.deps.Activity.Error(ctx, "Trading cycle failed", err)
	}
}

// Shutdown records a final account snapshot and returns today's statistics.
// It uses its own context because the loop context is already cancelled.
func (s *TradingService) Shutdown(timeout time.Duration) (dto.Statistics, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if s.cfg.LockEnabled {
		if err := s.deps.Cache.ReleaseLock(ctx, s.cfg.Account, s.cfg.StockCode, s.instanceID); err != nil {
			s.log.WarnContext(ctx, "Failed to release trader lock", logger.ErrorField(err))
		}
	}

	if cred, err := s.deps.Credentials.Credential(ctx); err == nil {
		if _, err := s.deps.Account.Snapshot(ctx, cred, s.cfg.Account, s.cfg.StockCode); err != nil {
			s.log.WarnContext(ctx, "Failed to save final account status", logger.ErrorField(err))
		}
	}

	stats, err := s.deps.Orders.Statistics(ctx, s.cfg.StockCode, StartOfDay(utils.TimeNowKST()))
	if err != nil {
		return dto.Statistics{}, err
	}
	s.deps.Activity.Info(ctx, fmt.Sprintf("Trading stopped: %d orders today (%d successful, %d buy, %d sell, amount %d)",
		stats.TotalOrders, stats.SuccessfulOrders, stats.BuyCount, stats.SellCount, stats.TotalAmount))
	return stats, nil
}

// StartOfDay returns midnight of t in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
