package service

import (
	"context"

	"go.uber.org/zap"

	"golang-stock-autotrader/internal/entity"
	"golang-stock-autotrader/internal/repository"
	"golang-stock-autotrader/pkg/logger"
)

// ActivityLogger records operator-facing events in the application log and in trading_logs.
type ActivityLogger interface {
	Info(ctx context.Context, msg string, fields ...zap.Field)
	Warn(ctx context.Context, msg string, fields ...zap.Field)
	Error(ctx context.Context, msg string, err error, fields ...zap.Field)
}

type activityLogger struct {
	log  *logger.Logger
	logs repository.TradingLogRepository
}

func NewActivityLogger(log *logger.Logger, logs repository.TradingLogRepository) ActivityLogger {
	return &activityLogger{log: log, logs: logs}
}

func (a *activityLogger) Info(ctx context.Context, msg string, fields ...zap.Field) {
	a.log.InfoContext(ctx, msg, fields...)
	a.persist(ctx, entity.LogLevelInfo, msg)
}

func (a *activityLogger) Warn(ctx context.Context, msg string, fields ...zap.Field) {
	a.log.WarnContext(ctx, msg, fields...)
	a.persist(ctx, entity.LogLevelWarning, msg)
}

func (a *activityLogger) Error(ctx context.Context, msg string, err error, fields ...zap.Field) {
	if err != nil {
		fields = append(fields, logger.ErrorField(err))
		msg = msg + ": " + err.Error()
	}
	a.log.ErrorContext(ctx, msg, fields...)
	a.persist(ctx, entity.LogLevelError, msg)
}

// persist never fails the caller; a lost log row is only reported to zap.
func (a *activityLogger) persist(ctx context.Context, level entity.LogLevel, msg string) {
	if err := a.logs.Create(ctx, &entity.TradingLog{LogLevel: level, Message: msg}); err != nil {
		a.log.WarnContext(ctx, "Failed to persist trading log",
			logger.ErrorField(err),
			logger.StringField("level", string(level)),
			logger.StringField("message", msg))
	}
}
