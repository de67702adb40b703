package service

import (
	"context"
	"errors"
	"fmt"

	"golang-stock-autotrader/internal/repository"
	"golang-stock-autotrader/pkg/logger"
	"golang-stock-autotrader/pkg/telegram"
	"golang-stock-autotrader/pkg/utils"
)

// ReportService sends the daily statistics report.
type ReportService interface {
	SendDailyReport(ctx context.Context, stockCode string) error
}

type reportService struct {
	query    QueryService
	notifier telegram.Notifier
	log      *logger.Logger
}

func NewReportService(query QueryService, notifier telegram.Notifier, log *logger.Logger) ReportService {
	if notifier == nil {
		notifier = telegram.NopNotifier{}
	}
	return &reportService{query: query, notifier: notifier, log: log}
}

func (s *reportService) SendDailyReport(ctx context.Context, stockCode string) error {
	stats, err := s.query.Statistics(ctx, stockCode, 1)
	if err != nil {
		return fmt.Errorf("load statistics: %w", err)
	}

	account, err := s.query.LatestAccountStatus(ctx, stockCode)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.log.WarnContext(ctx, "Daily report without account status", logger.ErrorField(err))
	}

	message := telegram.FormatDailyReportForTelegram(stockCode, stats, account, utils.TimeNowKST())
	if err := s.notifier.SendMessage(message); err != nil {
		return fmt.Errorf("send daily report: %w", err)
	}
	s.log.InfoContext(ctx, "Daily report sent",
		logger.StringField("stock_code", stockCode),
		logger.Int64Field("total_orders", stats.TotalOrders))
	return nil
}
