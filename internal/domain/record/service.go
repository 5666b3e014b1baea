package record

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/slog"
)

// Store implements create/list/get/update/delete over one named collection.
// Every operation is a full load-mutate-save cycle through the Codec; the
// cycle runs under a per-store mutex.
type Store[T any, P Entity[T]] struct {
	name   string
	codec  Codec
	policy IDPolicy
	now    func() time.Time
	obs    Observer
	log    *slog.Logger
	mu     sync.Mutex
}

type storeOptions struct {
	policy IDPolicy
	now    func() time.Time
	obs    Observer
}

// Option configures a Store.
type Option func(*storeOptions)

// WithIDPolicy selects the id assignment policy. The default is IDPolicyCount.
func WithIDPolicy(p IDPolicy) Option {
	return func(o *storeOptions) { o.policy = p }
}

// WithClock overrides time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *storeOptions) { o.now = now }
}

// WithObserver reports every operation to obs.
func WithObserver(obs Observer) Option {
	return func(o *storeOptions) { o.obs = obs }
}

// NewStore creates a store for the collection saved under name.
func NewStore[T any, P Entity[T]](name string, codec Codec, log *slog.Logger, opts ...Option) *Store[T, P] {
	o := storeOptions{
		policy: IDPolicyCount,
		now:    time.Now,
		obs:    nopObserver{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T, P]{
		name:   name,
		codec:  codec,
		policy: o.policy,
		now:    o.now,
		obs:    o.obs,
		log:    log.With("component", "record_store", "collection", name),
	}
}

// Name returns the collection name.
func (s *Store[T, P]) Name() string {
	return s.name
}

// Create assigns the next id to rec, appends it and saves the collection.
func (s *Store[T, P]) Create(ctx context.Context, rec T) (_ T, err error) {
	defer s.observe("create", time.Now(), &err)
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	items, err := s.load(ctx)
	if err != nil {
		return zero, err
	}

	id, err := s.nextID(ctx, items)
	if err != nil {
		return zero, err
	}
	P(&rec).SetID(id)
	items = append(items, rec)

	if err := s.save(ctx, items, id); err != nil {
		return zero, err
	}

	s.log.Info("record created", "id", id)
	return rec, nil
}

// Append assigns ids to recs and adds them in one cycle. Incoming ids are ignored.
func (s *Store[T, P]) Append(ctx context.Context, recs []T) (_ []T, err error) {
	defer s.observe("append", time.Now(), &err)
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return []T{}, nil
	}

	first, err := s.nextID(ctx, items)
	if err != nil {
		return nil, err
	}

	added := make([]T, len(recs))
	last := first
	for i, rec := range recs {
		// both policies advance by one per appended record
		last = first + i
		P(&rec).SetID(last)
		added[i] = rec
		items = append(items, rec)
	}

	if err := s.save(ctx, items, last); err != nil {
		return nil, err
	}

	s.log.Info("records appended", "count", len(added), "first_id", first, "last_id", last)
	return added, nil
}

// List returns the whole collection in stored order. An empty collection is
// an empty, non-nil slice.
func (s *Store[T, P]) List(ctx context.Context) (_ []T, err error) {
	defer s.observe("list", time.Now(), &err)
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

// Get returns the first record with id.
func (s *Store[T, P]) Get(ctx context.Context, id int) (_ T, err error) {
	defer s.observe("get", time.Now(), &err)
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	items, err := s.load(ctx)
	if err != nil {
		return zero, err
	}
	idx := indexOf[T, P](items, id)
	if idx < 0 {
		return zero, s.notFound(id)
	}
	return items[idx], nil
}

// Update applies mutate to the first record with id and saves the
// collection. The id survives any change made by mutate; Touchable records
// get their timestamp refreshed. Nothing is written when the record is
// missing or mutate fails.
func (s *Store[T, P]) Update(ctx context.Context, id int, mutate func(P) error) (_ T, err error) {
	defer s.observe("update", time.Now(), &err)
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	items, err := s.load(ctx)
	if err != nil {
		return zero, err
	}
	idx := indexOf[T, P](items, id)
	if idx < 0 {
		return zero, s.notFound(id)
	}

	rec := P(&items[idx])
	if err := mutate(rec); err != nil {
		return zero, err
	}
	rec.SetID(id)
	if t, ok := any(rec).(Touchable); ok {
		t.Touch(s.now())
	}

	if err := s.save(ctx, items, 0); err != nil {
		return zero, err
	}

	s.log.Info("record updated", "id", id)
	return items[idx], nil
}

// UpdateFields sets text values on the record with id. Only the schema's
// mutable fields are accepted.
func (s *Store[T, P]) UpdateFields(ctx context.Context, id int, values map[string]string) (T, error) {
	return s.Update(ctx, id, func(rec P) error {
		// sorted for a deterministic first error
		names := make([]string, 0, len(values))
		for name := range values {
			names = append(names, name)
		}
		slices.Sort(names)

		for _, name := range names {
			if !IsMutable(rec, name) {
				return fmt.Errorf("%w: %s.%s", ErrImmutableField, s.name, name)
			}
			if err := rec.SetField(name, values[name]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes every record with id and returns how many were removed.
// Deleting a missing id succeeds and leaves the collection unchanged.
func (s *Store[T, P]) Delete(ctx context.Context, id int) (_ int, err error) {
	defer s.observe("delete", time.Now(), &err)
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	kept := slices.DeleteFunc(slices.Clone(items), func(item T) bool {
		return P(&item).GetID() == id
	})
	removed := len(items) - len(kept)

	if err := s.save(ctx, kept, 0); err != nil {
		return 0, err
	}

	s.log.Info("record deleted", "id", id, "removed", removed)
	return removed, nil
}

// Filter returns the records matching pred in stored order.
func (s *Store[T, P]) Filter(ctx context.Context, pred func(T) bool) ([]T, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

// FilterBy returns the records whose field text equals value.
func (s *Store[T, P]) FilterBy(ctx context.Context, field, value string) ([]T, error) {
	if err := s.checkField(field); err != nil {
		return nil, err
	}
	return s.Filter(ctx, func(item T) bool {
		v, err := P(&item).Field(field)
		return err == nil && v == value
	})
}

// Search returns the records where any of fields contains term.
func (s *Store[T, P]) Search(ctx context.Context, term string, fields ...string) ([]T, error) {
	for _, f := range fields {
		if err := s.checkField(f); err != nil {
			return nil, err
		}
	}
	return s.Filter(ctx, func(item T) bool {
		for _, f := range fields {
			if v, err := P(&item).Field(f); err == nil && strings.Contains(v, term) {
				return true
			}
		}
		return false
	})
}

func (s *Store[T, P]) checkField(field string) error {
	var probe T
	if !slices.Contains(P(&probe).Fields(), field) {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, s.name, field)
	}
	return nil
}

func (s *Store[T, P]) load(ctx context.Context) ([]T, error) {
	items := []T{}
	if err := s.codec.Load(ctx, s.name, &items); err != nil {
		return nil, fmt.Errorf("load %s: %w", s.name, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// save writes the collection and, for the monotonic policy, the last issued id.
// The counter goes first: if the collection write then fails, the counter is
// only ahead by a gap, while a failed counter write leaves the collection as it was.
func (s *Store[T, P]) save(ctx context.Context, items []T, issued int) error {
	if s.policy == IDPolicyMonotonic && issued > 0 {
		if err := s.codec.Save(ctx, s.seqName(), sequence{Last: issued}); err != nil {
			return fmt.Errorf("save %s: %w", s.seqName(), err)
		}
	}
	if err := s.codec.Save(ctx, s.name, items); err != nil {
		return fmt.Errorf("save %s: %w", s.name, err)
	}
	return nil
}

type sequence struct {
	Last int `json:"last" yaml:"last"`
}

func (s *Store[T, P]) seqName() string {
	return s.name + ".seq"
}

func (s *Store[T, P]) nextID(ctx context.Context, items []T) (int, error) {
	if s.policy != IDPolicyMonotonic {
		return len(items) + 1, nil
	}

	var seq sequence
	if err := s.codec.Load(ctx, s.seqName(), &seq); err != nil {
		return 0, fmt.Errorf("load %s: %w", s.seqName(), err)
	}
	// the collection may be ahead of the counter if the last counter write was lost
	last := seq.Last
	for i := range items {
		last = max(last, P(&items[i]).GetID())
	}
	return last + 1, nil
}

func (s *Store[T, P]) notFound(id int) error {
	return fmt.Errorf("%s #%d: %w", s.name, id, ErrNotFound)
}

func (s *Store[T, P]) observe(op string, start time.Time, errp *error) {
	err := *errp
	s.obs.ObserveOperation(s.name, op, err, time.Since(start))
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.log.Error("operation failed", "op", op, "error", err)
	}
}

func indexOf[T any, P Entity[T]](items []T, id int) int {
	for i := range items {
		if P(&items[i]).GetID() == id {
			return i
		}
	}
	return -1
}
