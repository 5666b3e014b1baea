package record

import (
	"context"
	"time"
)

// Codec loads and saves whole collections by name.
//
// Load must leave out untouched and return nil when nothing was ever saved
// under name. Save replaces the previous content as a single unit.
type Codec interface {
	Load(ctx context.Context, name string, out any) error
	Save(ctx context.Context, name string, v any) error
}

// Observer получает результат каждой операции хранилища (метрики).
type Observer interface {
	ObserveOperation(collection, op string, err error, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveOperation(string, string, error, time.Duration) {}
