package cmd

import (
	"github.com/spf13/cobra"

	"assistant/cmd/assistant/cmd/records"
	"assistant/internal/app/assistant"
)

func init() {
	env := records.Env{
		App:  func() *assistant.App { return app },
		JSON: func() bool { return jsonOutput },
	}

	// Добавляем команды работы с коллекциями
	rootCmd.AddCommand(records.NoteCmd(env))
	rootCmd.AddCommand(records.TaskCmd(env))
	rootCmd.AddCommand(records.ContactCmd(env))
	rootCmd.AddCommand(records.FinanceCmd(env))

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(calcCmd)
}

// skipSetup отключает инициализацию приложения для команд, которым не нужно хранилище.
func skipSetup(*cobra.Command, []string) error {
	return nil
}
