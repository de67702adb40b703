package service

import (
	"context"
	"fmt"
	"time"

	"golang-stock-autotrader/internal/broker"
	"golang-stock-autotrader/pkg/logger"
	"golang-stock-autotrader/pkg/utils"
)

// ReconcileResult reports a cancellation pass over unfilled orders.
type ReconcileResult struct {
	Attempted int      `json:"attempted"`
	Cancelled []string `json:"cancelled"`
	Failed    []string `json:"failed"`
}

// Reconciler cancels orders that are still open at the brokerage.
type Reconciler interface {
	// Reconcile tries to cancel every unfilled order of today. Failing to list
	// orders is returned as an error; a failed cancellation only lands in Failed.
	Reconcile(ctx context.Context, cred broker.Credential, account, stockCode string) (ReconcileResult, error)
}

type reconciler struct {
	broker   broker.Client
	activity ActivityLogger
	now      func() time.Time
}

func NewReconciler(brokerClient broker.Client, activity ActivityLogger) Reconciler {
	return &reconciler{broker: brokerClient, activity: activity, now: utils.TimeNowKST}
}

func (r *reconciler) Reconcile(ctx context.Context, cred broker.Credential, account, stockCode string) (ReconcileResult, error) {
	result := ReconcileResult{Cancelled: []string{}, Failed: []string{}}

	orders, err := r.broker.UnfilledOrders(ctx, cred, account, stockCode, r.now())
	if err != nil {
		r.activity.Error(ctx, "Failed to list unfilled orders", err, logger.StringField("stock_code", stockCode))
		return result, fmt.Errorf("list unfilled orders: %w", err)
	}

	for _, o := range orders {
		result.Attempted++
		if err := r.broker.CancelOrder(ctx, cred, account, o.OrderNo); err != nil {
			result.Failed = append(result.Failed, o.OrderNo)
			r.activity.Error(ctx, fmt.Sprintf("Failed to cancel order %s", o.OrderNo), err,
				logger.StringField("stock_code", stockCode))
			continue
		}
		result.Cancelled = append(result.Cancelled, o.OrderNo)
		r.activity.Info(ctx, fmt.Sprintf("Cancelled unfilled order %s", o.OrderNo),
			logger.StringField("stock_code", stockCode))
	}
	return result, nil
}
