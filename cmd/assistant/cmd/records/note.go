package records

import (
	"time"

	"github.com/spf13/cobra"

	"assistant/internal/app/assistant"
	"assistant/internal/domain/record"
)

// NoteCmd - команды для заметок
func NoteCmd(env Env) *cobra.Command {
	c := &collection[record.Note, *record.Note]{
		env:   env,
		kind:  record.KindNote,
		store: func(a *assistant.App) *assistant.NoteStore { return a.Notes },
		newRecord: func(now time.Time) record.Note {
			return record.NewNote("", "", now)
		},
		input:   []string{"title", "content"},
		columns: []string{record.FieldID, "title", "timestamp"},
		labels: map[string]string{
			record.FieldID: "ID",
			"title":        "Заголовок",
			"content":      "Содержимое",
			"timestamp":    "Изменена",
		},
	}

	cmd := &cobra.Command{
		Use:     "note",
		Aliases: []string{"notes"},
		Short:   "Управление заметками",
		Long:    `Создание, просмотр, редактирование и удаление заметок, экспорт и импорт CSV.`,
	}
	cmd.AddCommand(c.commands()...)
	return cmd
}
