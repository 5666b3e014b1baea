package records

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"assistant/internal/app/assistant"
	"assistant/internal/domain/record"
)

// Env связывает команды коллекций с приложением, которое создает корневая
// команда перед запуском подкоманды.
type Env struct {
	App  func() *assistant.App
	JSON func() bool
}

func (e Env) app() (*assistant.App, error) {
	if e.App == nil {
		return nil, errors.New("приложение не инициализировано")
	}
	a := e.App()
	if a == nil {
		return nil, errors.New("приложение не инициализировано")
	}
	return a, nil
}

func (e Env) json() bool {
	return e.JSON != nil && e.JSON()
}

// NotFoundError сообщает об отсутствующей записи понятным пользователю текстом.
type NotFoundError struct {
	Kind record.Kind
	ID   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: нет записи с ID %d", e.Kind.DisplayName(), e.ID)
}

func (e *NotFoundError) Unwrap() error { return record.ErrNotFound }

func notFound(kind record.Kind, id int, err error) error {
	if errors.Is(err, record.ErrNotFound) {
		return &NotFoundError{Kind: kind, ID: id}
	}
	return err
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("неверный ID: %q", arg)
	}
	return id, nil
}

func flagName(field string) string {
	return strings.ReplaceAll(field, "_", "-")
}
