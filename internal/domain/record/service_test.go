package record

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"assistant/internal/infrastructure/storage"
	"assistant/internal/infrastructure/storage/memory"
)

// MockCodec is a mock implementation of the Codec interface for testing
type MockCodec struct {
	mock.Mock
}

func (m *MockCodec) Load(ctx context.Context, name string, out any) error {
	args := m.Called(ctx, name, out)
	return args.Error(0)
}

func (m *MockCodec) Save(ctx context.Context, name string, v any) error {
	args := m.Called(ctx, name, v)
	return args.Error(0)
}

type observed struct {
	collection, op string
	err            error
}

type recordingObserver struct {
	calls []observed
}

func (o *recordingObserver) ObserveOperation(collection, op string, err error, _ time.Duration) {
	o.calls = append(o.calls, observed{collection: collection, op: op, err: err})
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, nil))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func newTaskStore(t *testing.T, opts ...Option) (*Store[Task, *Task], *memory.Storage) {
	t.Helper()
	codec := memory.New(storage.JSON{})
	return NewStore[Task, *Task](string(KindTask), codec, testLogger(), opts...), codec
}

func ids[T any, P Entity[T]](items []T) []int {
	out := make([]int, len(items))
	for i := range items {
		out[i] = P(&items[i]).GetID()
	}
	return out
}

func TestStore_CreateAssignsCountBasedIDs(t *testing.T) {
	ctx := context.Background()
	s, _ := newTaskStore(t)

	first, err := s.Create(ctx, NewTask("Buy milk", "2%", PriorityLow, "01-01-2025"))
	require.NoError(t, err)
	assert.Equal(t, 1, first.ID)
	assert.False(t, first.Done)

	second, err := s.Create(ctx, NewTask("Pay rent", "", PriorityHigh, ""))
	require.NoError(t, err)
	assert.Equal(t, 2, second.ID)

	removed, err := s.Delete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	// count policy reuses ids: one record left, so the next id is 2 again
	third, err := s.Create(ctx, NewTask("Call bank", "", PriorityMedium, ""))
	require.NoError(t, err)
	assert.Equal(t, 2, third.ID)

	items, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, ids[Task, *Task](items))
	assert.Equal(t, "Pay rent", items[0].Title)
	assert.Equal(t, "Call bank", items[1].Title)
}

func TestStore_CreateIgnoresIncomingID(t *testing.T) {
	s, _ := newTaskStore(t)

	task := NewTask("a", "", "", "")
	task.ID = 42
	created, err := s.Create(context.Background(), task)
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)
}

func TestStore_MonotonicPolicyNeverReusesIDs(t *testing.T) {
	ctx := context.Background()
	s, codec := newTaskStore(t, WithIDPolicy(IDPolicyMonotonic))

	for _, title := range []string{"a", "b", "c"} {
		_, err := s.Create(ctx, NewTask(title, "", "", ""))
		require.NoError(t, err)
	}
	_, err := s.Delete(ctx, 3)
	require.NoError(t, err)
	_, err = s.Delete(ctx, 1)
	require.NoError(t, err)

	created, err := s.Create(ctx, NewTask("d", "", "", ""))
	require.NoError(t, err)
	assert.Equal(t, 4, created.ID)

	raw, ok := codec.Raw("tasks.seq")
	require.True(t, ok)
	assert.JSONEq(t, `{"last": 4}`, string(raw))
}

func TestStore_MonotonicPolicyCatchesUpWithCollection(t *testing.T) {
	ctx := context.Background()
	s, codec := newTaskStore(t, WithIDPolicy(IDPolicyMonotonic))
	// collection written before the counter existed
	codec.Put("tasks", []byte(`[{"id": 7, "title": "old"}]`))

	created, err := s.Create(ctx, NewTask("new", "", "", ""))
	require.NoError(t, err)
	assert.Equal(t, 8, created.ID)
}

// seqFailingCodec fails every save of the id counter.
type seqFailingCodec struct {
	*memory.Storage
}

func (c seqFailingCodec) Save(ctx context.Context, name string, v any) error {
	if name == "tasks.seq" {
		return errors.New("disk full")
	}
	return c.Storage.Save(ctx, name, v)
}

func TestStore_MonotonicCounterFailureKeepsCollection(t *testing.T) {
	ctx := context.Background()
	mem := memory.New(storage.JSON{})
	s := NewStore[Task, *Task](string(KindTask), seqFailingCodec{mem}, testLogger(), WithIDPolicy(IDPolicyMonotonic))

	_, err := s.Create(ctx, NewTask("a", "", "", ""))
	require.Error(t, err)
	_, err = s.Append(ctx, []Task{NewTask("b", "", "", "")})
	require.Error(t, err)

	items, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
	_, ok := mem.Raw("tasks")
	assert.False(t, ok)
}

func TestStore_MonotonicCollectionFailureLeavesGap(t *testing.T) {
	ctx := context.Background()
	codec := new(MockCodec)
	codec.On("Load", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	codec.On("Save", mock.Anything, "tasks.seq", mock.Anything).Return(nil)
	codec.On("Save", mock.Anything, "tasks", mock.Anything).Return(errors.New("disk full")).Once()

	s := NewStore[Task, *Task](string(KindTask), codec, testLogger(), WithIDPolicy(IDPolicyMonotonic))
	_, err := s.Create(ctx, NewTask("a", "", "", ""))
	require.Error(t, err)

	codec.AssertCalled(t, "Save", mock.Anything, "tasks.seq", sequence{Last: 1})
}

func TestStore_Append(t *testing.T) {
	ctx := context.Background()
	s, _ := newTaskStore(t)

	_, err := s.Create(ctx, NewTask("first", "", "", ""))
	require.NoError(t, err)

	added, err := s.Append(ctx, []Task{
		{ID: 100, Title: "x"},
		{ID: 100, Title: "y"},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, ids[Task, *Task](added))

	items, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ids[Task, *Task](items))

	added, err = s.Append(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, added)
}

func TestStore_ListEmpty(t *testing.T) {
	s, _ := newTaskStore(t)

	items, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestStore_BlankPayloadIsEmptyCollection(t *testing.T) {
	s, codec := newTaskStore(t)
	codec.Put("tasks", []byte("  \n"))

	items, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestStore_MalformedPayloadIsNotOverwritten(t *testing.T) {
	ctx := context.Background()
	s, codec := newTaskStore(t)
	codec.Put("tasks", []byte("{not json"))

	_, err := s.List(ctx)
	var decodeErr *storage.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "tasks", decodeErr.Collection)

	_, err = s.Create(ctx, NewTask("a", "", "", ""))
	require.ErrorAs(t, err, &decodeErr)

	_, err = s.Delete(ctx, 1)
	require.ErrorAs(t, err, &decodeErr)

	raw, _ := codec.Raw("tasks")
	assert.Equal(t, "{not json", string(raw))
}

func TestStore_Get(t *testing.T) {
	ctx := context.Background()
	s, codec := newTaskStore(t)
	codec.Put("tasks", []byte(`[
		{"id": 1, "title": "first"},
		{"id": 2, "title": "second"},
		{"id": 2, "title": "duplicate"}
	]`))

	got, err := s.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Title)

	_, err = s.Get(ctx, 9)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_UpdateKeepsID(t *testing.T) {
	ctx := context.Background()
	s, _ := newTaskStore(t)

	_, err := s.Create(ctx, NewTask("a", "", "", ""))
	require.NoError(t, err)

	updated, err := s.Update(ctx, 1, func(t *Task) error {
		t.ID = 99
		t.Done = true
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.ID)
	assert.True(t, updated.Done)

	got, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, got.Done)
}

func TestStore_UpdateMissingWritesNothing(t *testing.T) {
	codec := new(MockCodec)
	codec.On("Load", mock.Anything, "tasks", mock.Anything).Return(nil)

	s := NewStore[Task, *Task]("tasks", codec, testLogger())
	_, err := s.Update(context.Background(), 5, func(*Task) error { return nil })

	assert.ErrorIs(t, err, ErrNotFound)
	codec.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestStore_UpdateMutateErrorWritesNothing(t *testing.T) {
	ctx := context.Background()
	s, codec := newTaskStore(t)
	_, err := s.Create(ctx, NewTask("a", "", "", ""))
	require.NoError(t, err)
	before, _ := codec.Raw("tasks")

	boom := errors.New("boom")
	_, err = s.Update(ctx, 1, func(t *Task) error {
		t.Title = "changed"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	after, _ := codec.Raw("tasks")
	assert.Equal(t, before, after)
}

func TestStore_UpdateRefreshesNoteTimestamp(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)
	edited := time.Date(2024, 3, 2, 18, 30, 5, 0, time.Local)
	now := created

	s := NewStore[Note, *Note]("notes", memory.New(nil), testLogger(),
		WithClock(func() time.Time { return now }))

	_, err := s.Create(ctx, NewNote("Покупки", "молоко", created))
	require.NoError(t, err)

	now = edited
	updated, err := s.UpdateFields(ctx, 1, map[string]string{"content": "молоко, хлеб"})
	require.NoError(t, err)
	assert.Equal(t, "молоко, хлеб", updated.Content)
	assert.Equal(t, "02-03-2024 18:30:05", updated.Timestamp)
}

func TestStore_UpdateFields(t *testing.T) {
	ctx := context.Background()
	s, _ := newTaskStore(t)
	_, err := s.Create(ctx, NewTask("a", "", PriorityLow, ""))
	require.NoError(t, err)

	tests := []struct {
		name    string
		values  map[string]string
		wantErr error
	}{
		{name: "mutable fields", values: map[string]string{"done": "true", "priority": PriorityHigh}},
		{name: "id is immutable", values: map[string]string{"id": "5"}, wantErr: ErrImmutableField},
		{name: "unknown field", values: map[string]string{"color": "red"}, wantErr: ErrImmutableField},
		{name: "invalid bool", values: map[string]string{"done": "maybe"}, wantErr: ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.UpdateFields(ctx, 1, tt.values)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}

	got, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, got.Done)
	assert.Equal(t, PriorityHigh, got.Priority)
	assert.Equal(t, 1, got.ID)
}

func TestStore_DeleteRemovesAllMatches(t *testing.T) {
	ctx := context.Background()
	s, codec := newTaskStore(t)
	codec.Put("tasks", []byte(`[{"id": 2}, {"id": 1}, {"id": 2}]`))

	removed, err := s.Delete(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	items, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids[Task, *Task](items))
}

func TestStore_DeleteMissingIsNoop(t *testing.T) {
	ctx := context.Background()
	s, _ := newTaskStore(t)
	_, err := s.Create(ctx, NewTask("a", "", "", ""))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		removed, err := s.Delete(ctx, 7)
		require.NoError(t, err)
		assert.Zero(t, removed)
	}

	items, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestStore_SaveErrorIsReturned(t *testing.T) {
	writeErr := &storage.WriteError{Collection: "tasks", Err: errors.New("disk full")}
	codec := new(MockCodec)
	codec.On("Load", mock.Anything, "tasks", mock.Anything).Return(nil)
	codec.On("Save", mock.Anything, "tasks", mock.Anything).Return(writeErr)

	obs := &recordingObserver{}
	s := NewStore[Task, *Task]("tasks", codec, testLogger(), WithObserver(obs))

	_, err := s.Create(context.Background(), NewTask("a", "", "", ""))
	var target *storage.WriteError
	require.ErrorAs(t, err, &target)

	require.Len(t, obs.calls, 1)
	assert.Equal(t, "create", obs.calls[0].op)
	assert.Error(t, obs.calls[0].err)
	codec.AssertExpectations(t)
}

func TestStore_FilterAndSearch(t *testing.T) {
	ctx := context.Background()
	s := NewStore[Contact, *Contact]("contacts", memory.New(nil), testLogger())

	for _, c := range []Contact{
		NewContact("Иван Петров", "+7 900 111-22-33", "ivan@example.com"),
		NewContact("Мария", "+7 900 444-55-66", "maria@example.com"),
		NewContact("Петр", "8 800 000", ""),
	} {
		_, err := s.Create(ctx, c)
		require.NoError(t, err)
	}

	found, err := s.Search(ctx, "Петр", ContactSearchFields...)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, ids[Contact, *Contact](found))

	found, err = s.Search(ctx, "444", ContactSearchFields...)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, ids[Contact, *Contact](found))

	found, err = s.Search(ctx, "example", ContactSearchFields...)
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = s.FilterBy(ctx, "name", "Мария")
	require.NoError(t, err)
	assert.Equal(t, []int{2}, ids[Contact, *Contact](found))

	_, err = s.FilterBy(ctx, "address", "x")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestStore_FinanceBalance(t *testing.T) {
	ctx := context.Background()
	s := NewStore[FinanceRecord, *FinanceRecord]("finance", memory.New(nil), testLogger())

	for _, r := range []FinanceRecord{
		NewFinanceRecord(1500, "зарплата", "01-03-2024", ""),
		NewFinanceRecord(-250.5, "еда", "02-03-2024", "обед"),
		NewFinanceRecord(-49.5, "еда", "03-03-2024", ""),
	} {
		_, err := s.Create(ctx, r)
		require.NoError(t, err)
	}

	items, err := s.List(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 1200.0, Balance(items), 1e-9)

	food, err := s.FilterBy(ctx, "category", "еда")
	require.NoError(t, err)
	assert.Len(t, food, 2)
	assert.InDelta(t, -300.0, Balance(food), 1e-9)
}

func TestStore_ObserverSeesNotFound(t *testing.T) {
	obs := &recordingObserver{}
	s := NewStore[Task, *Task]("tasks", memory.New(nil), testLogger(), WithObserver(obs))

	_, err := s.Get(context.Background(), 1)
	require.ErrorIs(t, err, ErrNotFound)

	require.Len(t, obs.calls, 1)
	assert.Equal(t, observed{collection: "tasks", op: "get", err: err}, obs.calls[0])
}
