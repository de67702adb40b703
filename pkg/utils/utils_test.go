package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokerDateUsesKST(t *testing.T) {
	// 2024-03-01 16:30 UTC is already 2024-03-02 in Seoul.
	ts := time.Date(2024, 3, 1, 16, 30, 0, 0, time.UTC)
	assert.Equal(t, "20240302", BrokerDate(ts))
	assert.Equal(t, "20240302_013000", BackupSuffix(ts))
}

func TestRecover(t *testing.T) {
	err := Recover(func() error { panic("boom") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	sentinel := errors.New("plain")
	assert.ErrorIs(t, Recover(func() error { return sentinel }), sentinel)
	assert.NoError(t, Recover(func() error { return nil }))
}

func TestGoSafeReportsPanic(t *testing.T) {
	got := make(chan interface{}, 1)
	GoSafe(func() { panic("worker died") }, func(r interface{}, _ []byte) { got <- r })

	select {
	case r := <-got:
		assert.Equal(t, "worker died", r)
	case <-time.After(time.Second):
		t.Fatal("panic was not reported")
	}
}

func TestToPointer(t *testing.T) {
	p := ToPointer(42)
	require.NotNil(t, p)
	assert.Equal(t, 42, *p)
}
