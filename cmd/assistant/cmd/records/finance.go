package records

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"assistant/cmd/assistant/cmd/console"
	"assistant/internal/app/assistant"
	"assistant/internal/domain/record"
)

// FinanceCmd - команды для финансовых записей
func FinanceCmd(env Env) *cobra.Command {
	c := &collection[record.FinanceRecord, *record.FinanceRecord]{
		env:   env,
		kind:  record.KindFinance,
		store: func(a *assistant.App) *assistant.FinanceStore { return a.Finance },
		newRecord: func(time.Time) record.FinanceRecord {
			return record.FinanceRecord{}
		},
		input:   []string{"amount", "category", "date", "description"},
		columns: []string{record.FieldID, "date", "category", "amount", "description"},
		labels: map[string]string{
			record.FieldID: "ID",
			"amount":       "Сумма",
			"category":     "Категория",
			"date":         "Дата",
			"description":  "Описание",
		},
		prompts: map[string]string{
			"amount":   "Сумма операции (доход +, расход -)",
			"category": "Категория (например, Еда, Транспорт, Зарплата)",
			"date":     "Дата операции (ДД-ММ-ГГГГ)",
		},
	}

	cmd := &cobra.Command{
		Use:     "finance",
		Aliases: []string{"fin"},
		Short:   "Управление финансовыми записями",
		Long: `Учет доходов и расходов: записи, баланс, фильтр по категории, экспорт и импорт CSV.

Доход записывается положительной суммой, расход - отрицательной.`,
	}
	cmd.AddCommand(c.commands()...)
	cmd.AddCommand(financeBalanceCmd(env), financeFilterCmd(c))
	return cmd
}

func financeBalanceCmd(env Env) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Показать общий баланс",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := env.app()
			if err != nil {
				return err
			}
			balance, err := a.Balance(cmd.Context())
			if err != nil {
				return err
			}
			if env.json() {
				return console.WriteJSON(cmd.OutOrStdout(), map[string]float64{"balance": balance})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Общий баланс: %s\n", record.FormatAmount(balance))
			return nil
		},
	}
}

func financeFilterCmd(c *collection[record.FinanceRecord, *record.FinanceRecord]) *cobra.Command {
	return &cobra.Command{
		Use:   "filter <категория>",
		Short: "Показать записи одной категории",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.env.app()
			if err != nil {
				return err
			}
			items, err := a.FinanceByCategory(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := c.printList(out, items); err != nil {
				return err
			}
			if !c.env.json() && len(items) > 0 {
				fmt.Fprintf(out, "Итого по категории: %s\n", record.FormatAmount(record.Balance(items)))
			}
			return nil
		},
	}
}
