package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"golang-stock-autotrader/internal/dto"
	"golang-stock-autotrader/internal/entity"
	"golang-stock-autotrader/internal/repository"
	"golang-stock-autotrader/pkg/logger"
	"golang-stock-autotrader/pkg/utils"
)

const (
	DefaultRetentionDays = 90
	exportLimit          = 1000
	exportStatisticsDays = 30
)

// IntegrityReport is the outcome of CheckIntegrity.
type IntegrityReport struct {
	OK            bool             `json:"ok"`
	MissingTables []string         `json:"missing_tables"`
	Tables        map[string]int64 `json:"tables"`
}

// MaintenanceConfig locates the database for backups. DatabasePath is empty for postgres.
type MaintenanceConfig struct {
	DatabasePath string
	BackupDir    string
}

// MaintenanceService groups retention, backup, integrity and export/import.
type MaintenanceService interface {
	Cleanup(ctx context.Context, daysToKeep int) (map[string]int64, error)
	Backup(ctx context.Context) (string, error)
	CheckIntegrity(ctx context.Context) (*IntegrityReport, error)
	Status(ctx context.Context) (*dto.StatusResponse, error)
	Health(ctx context.Context) dto.HealthResponse
	Export(ctx context.Context, stockCode string, w io.Writer) error
	Import(ctx context.Context, r io.Reader) (map[string]int, error)
}

type maintenanceService struct {
	cfg      MaintenanceConfig
	repo     repository.MaintenanceRepository
	query    QueryService
	activity ActivityLogger
	log      *logger.Logger
	now      func() time.Time
}

func NewMaintenanceService(cfg MaintenanceConfig, repo repository.MaintenanceRepository, query QueryService, activity ActivityLogger, log *logger.Logger) MaintenanceService {
	return &maintenanceService{
		cfg:      cfg,
		repo:     repo,
		query:    query,
		activity: activity,
		log:      log,
		now:      time.Now,
	}
}

// Cleanup deletes time series rows older than daysToKeep days.
func (s *maintenanceService) Cleanup(ctx context.Context, daysToKeep int) (map[string]int64, error) {
	if daysToKeep <= 0 {
		daysToKeep = DefaultRetentionDays
	}
	deleted, err := s.repo.DeleteOlderThan(ctx, s.now().AddDate(0, 0, -daysToKeep))
	if err != nil {
		s.activity.Error(ctx, "Data cleanup failed", err)
		return nil, err
	}

	var total int64
	for _, n := range deleted {
		total += n
	}
	s.activity.Info(ctx, fmt.Sprintf("Deleted %d rows older than %d days", total, daysToKeep))
	return deleted, nil
}

// Backup copies the database next to itself, or into BackupDir when set.
func (s *maintenanceService) Backup(ctx context.Context) (string, error) {
	if s.cfg.DatabasePath == "" {
		return "", repository.ErrBackupUnsupported
	}
	path := BackupPath(s.cfg.DatabasePath, s.cfg.BackupDir, s.now())
	if err := s.repo.Backup(ctx, path); err != nil {
		if !errors.Is(err, repository.ErrBackupUnsupported) {
			s.activity.Error(ctx, "Database backup failed", err)
		}
		return "", err
	}
	s.activity.Info(ctx, "Database backup created: "+path)
	return path, nil
}

// BackupPath returns <db>.backup_YYYYMMDD_HHMMSS, placed in dir when dir is not empty.
func BackupPath(dbPath, dir string, at time.Time) string {
	name := dbPath + ".backup_" + utils.BackupSuffix(at)
	if dir != "" {
		name = filepath.Join(dir, filepath.Base(name))
	}
	return name
}

func (s *maintenanceService) CheckIntegrity(ctx context.Context) (*IntegrityReport, error) {
	report := &IntegrityReport{MissingTables: s.repo.MissingTables()}
	if len(report.MissingTables) > 0 {
		return report, nil
	}
	counts, err := s.repo.TableCounts(ctx)
	if err != nil {
		return nil, err
	}
	report.Tables = counts
	report.OK = true
	return report, nil
}

func (s *maintenanceService) Status(ctx context.Context) (*dto.StatusResponse, error) {
	counts, err := s.repo.TableCounts(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.StatusResponse{
		Status:    "running",
		Database:  "connected",
		Tables:    counts,
		Timestamp: s.now(),
	}, nil
}

func (s *maintenanceService) Health(ctx context.Context) dto.HealthResponse {
	resp := dto.HealthResponse{Status: "healthy", Database: "connected", Timestamp: s.now()}
	if err := s.repo.Ping(ctx); err != nil {
		s.log.ErrorContext(ctx, "Database health check failed", logger.ErrorField(err))
		resp.Status = "unhealthy"
		resp.Database = "disconnected"
	}
	return resp
}

// Export writes the trading history of a stock as indented JSON.
func (s *maintenanceService) Export(ctx context.Context, stockCode string, w io.Writer) error {
	bundle := dto.ExportBundle{ExportedAt: s.now(), StockCode: stockCode}

	var err error
	if bundle.PriceHistory, err = s.query.PriceHistory(ctx, stockCode, exportLimit); err != nil {
		return fmt.Errorf("export price history: %w", err)
	}
	if bundle.MovingAverages, err = s.query.MovingAverages(ctx, stockCode, exportLimit); err != nil {
		return fmt.Errorf("export moving averages: %w", err)
	}
	if bundle.Orders, err = s.query.Orders(ctx, stockCode, exportLimit); err != nil {
		return fmt.Errorf("export orders: %w", err)
	}
	if bundle.Statistics, err = s.query.Statistics(ctx, stockCode, exportStatisticsDays); err != nil {
		return fmt.Errorf("export statistics: %w", err)
	}
	if bundle.Settings, err = s.query.TradingSettings(ctx, stockCode); err != nil {
		return fmt.Errorf("export settings: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(bundle); err != nil {
		return err
	}
	s.activity.Info(ctx, fmt.Sprintf("Exported %d prices and %d orders of %s", len(bundle.PriceHistory), len(bundle.Orders), stockCode))
	return nil
}

// Import restores an export. Rows are appended with new IDs; settings are upserted.
func (s *maintenanceService) Import(ctx context.Context, r io.Reader) (map[string]int, error) {
	var bundle dto.ExportBundle
	if err := json.NewDecoder(r).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}

	// Exports are newest first; restore them oldest first so IDs keep time order.
	reverse(bundle.PriceHistory)
	reverse(bundle.MovingAverages)
	reverse(bundle.Orders)

	data := repository.ImportData{
		Prices:         bundle.PriceHistory,
		MovingAverages: bundle.MovingAverages,
		Orders:         bundle.Orders,
		Setting:        bundle.Settings,
	}
	if data.Setting != nil && data.Setting.StockCode == "" {
		data.Setting.StockCode = bundle.StockCode
	}
	for i := range data.Orders {
		if data.Orders[i].Status == "" {
			data.Orders[i].Status = entity.OrderStatusFailed
		}
	}

	imported, err := s.repo.Import(ctx, data)
	if err != nil {
		s.activity.Error(ctx, "Data import failed", err)
		return nil, err
	}
	s.activity.Info(ctx, fmt.Sprintf("Imported %d prices, %d moving averages and %d orders",
		imported["price_data"], imported["moving_averages"], imported["orders"]))
	return imported, nil
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
