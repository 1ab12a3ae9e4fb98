package service

import (
	"context"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// retryingOracle оборачивает оракула в политику повторов с экспоненциальной
// задержкой и джиттером. Находится на границе адаптера: движок диалога видит
// только финальную ErrOracleUnavailable.
type retryingOracle struct {
	next        Oracle
	maxAttempts int
	baseDelay   time.Duration
	logger      *zap.Logger
}

func newRetryingOracle(next Oracle, maxAttempts int, baseDelay time.Duration, logger *zap.Logger) Oracle {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	return &retryingOracle{
		next:        next,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		logger:      logger,
	}
}

func (r *retryingOracle) Complete(ctx context.Context, sessionID string, systemPrompt string, userInput string, params CompletionParams) (string, UsageInfo, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		text, usage, err := r.next.Complete(ctx, sessionID, systemPrompt, userInput, params)
		if err == nil {
			return text, usage, nil
		}
		lastErr = err

		if attempt == r.maxAttempts {
			r.logger.Warn("Достигнуто максимальное количество попыток вызова оракула",
				zap.Int("max_attempts", r.maxAttempts),
				zap.String("session_id", sessionID),
				zap.Error(err))
			break
		}
		if ctx.Err() != nil {
			// Контекст хода отменен - повторять бессмысленно
			break
		}

		delay := float64(r.baseDelay) * math.Pow(2, float64(attempt-1))
		jitter := delay * 0.1
		delay += jitter * (rand.Float64()*2 - 1)
		waitDuration := time.Duration(delay)
		if waitDuration < r.baseDelay {
			waitDuration = r.baseDelay
		}

		r.logger.Info("Повтор вызова оракула",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.maxAttempts),
			zap.Duration("wait", waitDuration),
			zap.String("session_id", sessionID))

		select {
		case <-ctx.Done():
			return "", UsageInfo{}, ctx.Err()
		case <-time.After(waitDuration):
		}
	}
	return "", UsageInfo{}, lastErr
}
