package forecast

import (
	"context"

	"github.com/pkg/errors"
)

// Async runs op on its own goroutine and reports to exactly one of the
// callbacks. The returned channel is closed once the callback has returned.
//
//	Async(ctx, func(ctx context.Context) ([]models.ForecastView, error) {
//		return c.GetForecastWeek(ctx, venice)
//	}, render, showError)
func Async[T any](
	ctx context.Context,
	op func(context.Context) (T, error),
	onSuccess func(T),
	onError func(error),
) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)

		result, err := run(ctx, op)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		if onSuccess != nil {
			onSuccess(result)
		}
	}()

	return done
}

func run[T any](ctx context.Context, op func(context.Context) (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("forecast operation panicked: %v", r)
		}
	}()

	return op(ctx)
}
