package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"golang-stock-autotrader/internal/broker"
)

func TestReconciler_AttemptsEveryOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	unfilled := []broker.UnfilledOrder{{OrderNo: "0001"}, {OrderNo: "0002"}, {OrderNo: "0003"}, {OrderNo: "0004"}, {OrderNo: "0005"}}
	f.broker.On("UnfilledOrders", mock.Anything, mock.Anything, testAccount, testStockCode, mock.Anything).Return(unfilled, nil).Once()
	f.broker.On("CancelOrder", mock.Anything, mock.Anything, testAccount, "0002").Return(errors.New("already filled")).Once()
	f.broker.On("CancelOrder", mock.Anything, mock.Anything, testAccount, "0004").Return(errors.New("rejected")).Once()
	f.broker.On("CancelOrder", mock.Anything, mock.Anything, testAccount, mock.Anything).Return(nil).Times(3)

	result, err := f.reconciler.Reconcile(ctx, broker.Credential{AccessToken: "token"}, testAccount, testStockCode)
	require.NoError(t, err)

	assert.Equal(t, 5, result.Attempted)
	assert.Equal(t, []string{"0001", "0003", "0005"}, result.Cancelled)
	assert.Equal(t, []string{"0002", "0004"}, result.Failed)
	f.broker.AssertNumberOfCalls(t, "CancelOrder", 5)
}

func TestReconciler_ListFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.broker.On("UnfilledOrders", mock.Anything, mock.Anything, testAccount, testStockCode, mock.Anything).
		Return(nil, &broker.APIError{Op: "unfilled orders", Kind: broker.ErrTransport, Err: errors.New("timeout")}).Once()

	result, err := f.reconciler.Reconcile(ctx, broker.Credential{AccessToken: "token"}, testAccount, testStockCode)
	require.Error(t, err)
	assert.ErrorIs(t, err, broker.ErrTransport)
	assert.Zero(t, result.Attempted)
	f.broker.AssertNotCalled(t, "CancelOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReconciler_NothingToCancel(t *testing.T) {
	f := newFixture(t)

	f.broker.On("UnfilledOrders", mock.Anything, mock.Anything, testAccount, testStockCode, mock.Anything).
		Return([]broker.UnfilledOrder{}, nil).Once()

	result, err := f.reconciler.Reconcile(context.Background(), broker.Credential{AccessToken: "token"}, testAccount, testStockCode)
	require.NoError(t, err)
	assert.Zero(t, result.Attempted)
	assert.Empty(t, result.Cancelled)
	assert.Empty(t, result.Failed)
}
