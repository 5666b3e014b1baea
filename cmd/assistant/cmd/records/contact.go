package records

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"assistant/internal/app/assistant"
	"assistant/internal/domain/record"
)

// ContactCmd - команды для контактов
func ContactCmd(env Env) *cobra.Command {
	c := &collection[record.Contact, *record.Contact]{
		env:   env,
		kind:  record.KindContact,
		store: func(a *assistant.App) *assistant.ContactStore { return a.Contacts },
		newRecord: func(time.Time) record.Contact {
			return record.NewContact("", "", "")
		},
		input:   []string{"name", "phone", "email"},
		columns: []string{record.FieldID, "name", "phone", "email"},
		labels: map[string]string{
			record.FieldID: "ID",
			"name":         "Имя",
			"phone":        "Телефон",
			"email":        "Email",
		},
	}

	cmd := &cobra.Command{
		Use:     "contact",
		Aliases: []string{"contacts"},
		Short:   "Управление контактами",
		Long:    `Создание, поиск, редактирование и удаление контактов, экспорт и импорт CSV.`,
	}
	cmd.AddCommand(c.commands()...)
	cmd.AddCommand(contactSearchCmd(c))
	return cmd
}

func contactSearchCmd(c *collection[record.Contact, *record.Contact]) *cobra.Command {
	return &cobra.Command{
		Use:   "search <имя или телефон>",
		Short: "Найти контакты по имени или номеру телефона",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.env.app()
			if err != nil {
				return err
			}
			found, err := a.SearchContacts(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return c.printList(cmd.OutOrStdout(), found)
		},
	}
}
