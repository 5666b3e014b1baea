package record

import (
	"time"
)

// Note - текстовая заметка
type Note struct {
	ID        int    `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Content   string `json:"content" yaml:"content"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
}

var (
	noteFields        = []string{FieldID, "title", "content", "timestamp"}
	noteMutableFields = []string{"title", "content"}
)

// NewNote создает заметку с меткой времени now.
func NewNote(title, content string, now time.Time) Note {
	return Note{
		Title:     title,
		Content:   content,
		Timestamp: FormatTimestamp(now),
	}
}

func (n *Note) Kind() Kind              { return KindNote }
func (n *Note) GetID() int              { return n.ID }
func (n *Note) SetID(id int)            { n.ID = id }
func (n *Note) Fields() []string        { return noteFields }
func (n *Note) MutableFields() []string { return noteMutableFields }

// Touch refreshes the timestamp.
func (n *Note) Touch(now time.Time) {
	n.Timestamp = FormatTimestamp(now)
}

func (n *Note) Field(name string) (string, error) {
	switch name {
	case FieldID:
		return formatID(n.ID), nil
	case "title":
		return n.Title, nil
	case "content":
		return n.Content, nil
	case "timestamp":
		return n.Timestamp, nil
	}
	return "", unknownField(KindNote, name)
}

func (n *Note) SetField(name, value string) error {
	switch name {
	case FieldID:
		id, err := parseID(KindNote, value)
		if err != nil {
			return err
		}
		n.ID = id
	case "title":
		n.Title = value
	case "content":
		n.Content = value
	case "timestamp":
		n.Timestamp = value
	default:
		return unknownField(KindNote, name)
	}
	return nil
}
