package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("loud", "json")
	assert.Error(t, err)
}

func TestNewDefaults(t *testing.T) {
	l, err := New("", "")
	require.NoError(t, err)
	assert.NotNil(t, l.Logger)
}

func TestContextFieldsAreAppended(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{Logger: zap.New(core)}

	ctx := WithContext(context.Background(), StringField("stock_code", "122640"))
	ctx = WithContext(ctx, IntField("cycle", 3))
	l.InfoContext(ctx, "cycle finished", StringField("signal", "HOLD"))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "122640", fields["stock_code"])
	assert.Equal(t, int64(3), fields["cycle"])
	assert.Equal(t, "HOLD", fields["signal"])
}
