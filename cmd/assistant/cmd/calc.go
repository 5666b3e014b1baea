package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"assistant/cmd/assistant/cmd/console"
	"assistant/internal/domain/calc"
)

var calcCmd = &cobra.Command{
	Use:   "calc [выражение]",
	Short: "Калькулятор",
	Long: `Вычисление арифметических выражений: числа, скобки и операции
+ - * / // % ** (// и % - целочисленное деление и остаток с округлением вниз).

Без аргументов запускается диалог: выражения читаются построчно до ввода
"выход" или конца ввода. Выражение, начинающееся с минуса, передайте после --.`,
	PersistentPreRunE: skipSetup,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			v, err := calc.Eval(strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), calc.Format(v))
			return nil
		}
		return calcLoop(cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func calcLoop(in io.Reader, out io.Writer) error {
	p := console.NewPrompter(in, out)
	for {
		line, err := p.Line("Введите выражение (например, 5 + 3) или 'выход' для выхода: ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		expr := strings.TrimSpace(line)
		switch strings.ToLower(expr) {
		case "":
			continue
		case "выход", "exit", "quit":
			return nil
		}

		v, err := calc.Eval(expr)
		if err != nil {
			console.Failure(out, "Ошибка: %v", err)
			continue
		}
		fmt.Fprintf(out, "Результат: %s\n", calc.Format(v))
	}
}
