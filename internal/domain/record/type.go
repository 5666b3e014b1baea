package record

import (
	"fmt"
)

// Kind names a collection; the value doubles as the storage name.
type Kind string

const (
	KindNote    Kind = "notes"
	KindTask    Kind = "tasks"
	KindContact Kind = "contacts"
	KindFinance Kind = "finance"
)

// Kinds возвращает все поддерживаемые коллекции в порядке главного меню.
func Kinds() []Kind {
	return []Kind{KindNote, KindTask, KindContact, KindFinance}
}

// Validate проверяет, что коллекция известна.
func (k Kind) Validate() error {
	switch k {
	case KindNote, KindTask, KindContact, KindFinance:
		return nil
	}
	return fmt.Errorf("неверный тип коллекции: %s", k)
}

// String возвращает строковое представление коллекции.
func (k Kind) String() string {
	return string(k)
}

// DisplayName возвращает человекочитаемое название коллекции.
func (k Kind) DisplayName() string {
	switch k {
	case KindNote:
		return "Заметки"
	case KindTask:
		return "Задачи"
	case KindContact:
		return "Контакты"
	case KindFinance:
		return "Финансовые записи"
	default:
		return "Неизвестная коллекция"
	}
}
