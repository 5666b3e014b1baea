package records

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"assistant/cmd/assistant/cmd/console"
	"assistant/internal/app/assistant"
	"assistant/internal/domain/record"
)

// TaskCmd - команды для задач
func TaskCmd(env Env) *cobra.Command {
	c := &collection[record.Task, *record.Task]{
		env:   env,
		kind:  record.KindTask,
		store: func(a *assistant.App) *assistant.TaskStore { return a.Tasks },
		newRecord: func(time.Time) record.Task {
			return record.NewTask("", "", "", "")
		},
		input:   []string{"title", "description", "priority", "due_date"},
		columns: []string{record.FieldID, "title", "priority", "due_date", "done"},
		labels: map[string]string{
			record.FieldID: "ID",
			"title":        "Задача",
			"description":  "Описание",
			"done":         "Статус",
			"priority":     "Приоритет",
			"due_date":     "Срок",
		},
		prompts: map[string]string{
			"title":    "Краткое описание задачи",
			"done":     "Выполнена (true/false)",
			"priority": "Приоритет (Высокий, Средний, Низкий)",
			"due_date": "Срок выполнения (ДД-ММ-ГГГГ)",
		},
		defaults: map[string]string{
			"priority": record.PriorityMedium,
		},
		display: map[string]func(string) string{
			"done": taskStatus,
		},
	}

	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks"},
		Short:   "Управление задачами",
		Long:    `Создание, просмотр, редактирование, выполнение и удаление задач, экспорт и импорт CSV.`,
	}
	cmd.AddCommand(c.commands()...)
	cmd.AddCommand(taskDoneCmd(env))
	return cmd
}

func taskStatus(done string) string {
	if ok, _ := strconv.ParseBool(done); ok {
		return "Выполнена"
	}
	return "Не выполнена"
}

func taskDoneCmd(env Env) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Отметить задачу как выполненную",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := env.app()
			if err != nil {
				return err
			}
			task, err := a.MarkTaskDone(cmd.Context(), id)
			if err != nil {
				return notFound(record.KindTask, id, err)
			}
			if env.json() {
				return console.WriteJSON(cmd.OutOrStdout(), task)
			}
			console.Success(cmd.OutOrStdout(), "Задача %d отмечена как выполненная", id)
			return nil
		},
	}
}
