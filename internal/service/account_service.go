package service

import (
	"context"
	"fmt"

	"golang-stock-autotrader/internal/broker"
	"golang-stock-autotrader/internal/entity"
	"golang-stock-autotrader/internal/repository"
	"golang-stock-autotrader/pkg/logger"
)

// AccountService reads and records account snapshots.
type AccountService interface {
	Snapshot(ctx context.Context, cred broker.Credential, account, stockCode string) (*entity.AccountStatus, error)
}

type accountService struct {
	broker   broker.Client
	statuses repository.AccountStatusRepository
	log      *logger.Logger
}

func NewAccountService(brokerClient broker.Client, statuses repository.AccountStatusRepository, log *logger.Logger) AccountService {
	return &accountService{broker: brokerClient, statuses: statuses, log: log}
}

// Snapshot queries holding quantity and total evaluation and stores them.
// A storage failure is logged and the snapshot is still returned.
func (s *accountService) Snapshot(ctx context.Context, cred broker.Credential, account, stockCode string) (*entity.AccountStatus, error) {
	holding, err := s.broker.HoldingQuantity(ctx, cred, account, stockCode)
	if err != nil {
		return nil, fmt.Errorf("fetch holding quantity: %w", err)
	}
	evaluation, err := s.broker.TotalEvaluation(ctx, cred, account)
	if err != nil {
		return nil, fmt.Errorf("fetch total evaluation: %w", err)
	}

	status := &entity.AccountStatus{
		Account:         account,
		StockCode:       stockCode,
		HoldingQuantity: holding,
		TotalEvaluation: evaluation,
	}
	if err := s.statuses.Create(ctx, status); err != nil {
		s.log.ErrorContext(ctx, "Failed to save account status", logger.ErrorField(err))
	}
	return status, nil
}
