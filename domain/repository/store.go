package repository

import "context"

// Store is the read/delete surface every persistent store exposes.
type Store[T any] interface {
	Find(ctx context.Context, options ...Option) ([]T, error)
	FindOne(ctx context.Context, options ...Option) (T, error)
	Count(ctx context.Context, options ...Option) (int64, error)
	DeleteBy(ctx context.Context, options ...Option) error
}
