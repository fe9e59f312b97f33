package service

import (
	"context"
	"errors"
	"faaqs_backend/internal/config"
	"faaqs_backend/internal/util"
	"time"
)

type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// withRetry 只在 ErrBackendUnavailable 时按固定间隔重试，最多 MaxRetries 次
func withRetry[T any](ctx context.Context, policy config.RetryPolicy, sleep sleepFunc, fn func(context.Context) (T, error)) (T, error) {
	v, err := fn(ctx)
	for attempt := 0; attempt < policy.MaxRetries && err != nil && errors.Is(err, util.ErrBackendUnavailable); attempt++ {
		if serr := sleep(ctx, policy.Delay); serr != nil {
			return v, err
		}
		v, err = fn(ctx)
	}
	return v, err
}
