package record

import (
	"strconv"
)

// Task - задача с приоритетом и сроком выполнения
type Task struct {
	ID          int    `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Done        bool   `json:"done" yaml:"done"`
	Priority    string `json:"priority" yaml:"priority"`
	DueDate     string `json:"due_date" yaml:"due_date"`
}

// Приоритеты, которые предлагает интерфейс; поле остается свободным текстом.
const (
	PriorityHigh   = "Высокий"
	PriorityMedium = "Средний"
	PriorityLow    = "Низкий"
)

var (
	taskFields        = []string{FieldID, "title", "description", "done", "priority", "due_date"}
	taskMutableFields = []string{"title", "description", "done", "priority", "due_date"}
)

// NewTask создает невыполненную задачу.
func NewTask(title, description, priority, dueDate string) Task {
	return Task{
		Title:       title,
		Description: description,
		Priority:    priority,
		DueDate:     dueDate,
	}
}

func (t *Task) Kind() Kind              { return KindTask }
func (t *Task) GetID() int              { return t.ID }
func (t *Task) SetID(id int)            { t.ID = id }
func (t *Task) Fields() []string        { return taskFields }
func (t *Task) MutableFields() []string { return taskMutableFields }

func (t *Task) Field(name string) (string, error) {
	switch name {
	case FieldID:
		return formatID(t.ID), nil
	case "title":
		return t.Title, nil
	case "description":
		return t.Description, nil
	case "done":
		return strconv.FormatBool(t.Done), nil
	case "priority":
		return t.Priority, nil
	case "due_date":
		return t.DueDate, nil
	}
	return "", unknownField(KindTask, name)
}

func (t *Task) SetField(name, value string) error {
	switch name {
	case FieldID:
		id, err := parseID(KindTask, value)
		if err != nil {
			return err
		}
		t.ID = id
	case "title":
		t.Title = value
	case "description":
		t.Description = value
	case "done":
		// empty cell keeps the default
		if value == "" {
			t.Done = false
			return nil
		}
		done, err := strconv.ParseBool(value)
		if err != nil {
			return invalidValue(KindTask, name, value, err)
		}
		t.Done = done
	case "priority":
		t.Priority = value
	case "due_date":
		t.DueDate = value
	default:
		return unknownField(KindTask, name)
	}
	return nil
}
