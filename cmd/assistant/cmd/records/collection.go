package records

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"assistant/cmd/assistant/cmd/console"
	"assistant/internal/app/assistant"
	"assistant/internal/domain/record"
	"assistant/internal/infrastructure/csvio"
)

// collection собирает одинаковый набор подкоманд для любой коллекции.
type collection[T any, P record.Entity[T]] struct {
	env       Env
	kind      record.Kind
	store     func(*assistant.App) *record.Store[T, P]
	newRecord func(now time.Time) T
	// поля, которые запрашиваются при создании
	input []string
	// колонки таблицы в list
	columns []string
	labels  map[string]string
	// подсказки ввода, если они отличаются от подписи
	prompts  map[string]string
	defaults map[string]string
	display  map[string]func(string) string
}

func (c *collection[T, P]) commands() []*cobra.Command {
	return []*cobra.Command{
		c.createCmd(),
		c.listCmd(),
		c.getCmd(),
		c.editCmd(),
		c.deleteCmd(),
		c.exportCmd(),
		c.importCmd(),
	}
}

func (c *collection[T, P]) label(field string) string {
	if l, ok := c.labels[field]; ok {
		return l
	}
	return field
}

func (c *collection[T, P]) prompt(field string) string {
	if p, ok := c.prompts[field]; ok {
		return p
	}
	return c.label(field)
}

func (c *collection[T, P]) fields() []string {
	var probe T
	return P(&probe).Fields()
}

func (c *collection[T, P]) mutableFields() []string {
	var probe T
	return P(&probe).MutableFields()
}

func (c *collection[T, P]) createCmd() *cobra.Command {
	values := make(map[string]*string, len(c.input))
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Создать запись",
		Long: fmt.Sprintf(`Создание записи в коллекции «%s».

Незаданные флагами поля запрашиваются построчно со стандартного ввода.`, c.kind.DisplayName()),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.env.app()
			if err != nil {
				return err
			}

			p := console.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			rec := c.newRecord(time.Now())
			for _, f := range c.input {
				if cmd.Flags().Changed(flagName(f)) {
					if err := P(&rec).SetField(f, *values[f]); err != nil {
						return err
					}
					continue
				}
				if err := c.ask(p, P(&rec), f); err != nil {
					return err
				}
			}

			created, err := c.store(a).Create(cmd.Context(), rec)
			if err != nil {
				return err
			}

			if c.env.json() {
				return console.WriteJSON(cmd.OutOrStdout(), created)
			}
			console.Success(cmd.OutOrStdout(), "%s: запись создана, ID %d", c.kind.DisplayName(), P(&created).GetID())
			return nil
		},
	}
	for _, f := range c.input {
		values[f] = cmd.Flags().String(flagName(f), "", c.prompt(f))
	}
	return cmd
}

// ask запрашивает значение поля; в терминале неверное значение спрашивается повторно.
func (c *collection[T, P]) ask(p *console.Prompter, rec P, field string) error {
	for {
		value, err := p.Ask(c.prompt(field), c.defaults[field])
		if err != nil {
			return err
		}
		err = rec.SetField(field, value)
		if err == nil || !p.Interactive() || !errors.Is(err, record.ErrInvalidValue) {
			return err
		}
		console.Warn(p.Out(), "Неверное значение, попробуйте еще раз")
	}
}

func (c *collection[T, P]) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Показать все записи",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.env.app()
			if err != nil {
				return err
			}
			items, err := c.store(a).List(cmd.Context())
			if err != nil {
				return err
			}
			return c.printList(cmd.OutOrStdout(), items)
		},
	}
}

func (c *collection[T, P]) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Показать запись",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := c.env.app()
			if err != nil {
				return err
			}
			rec, err := c.store(a).Get(cmd.Context(), id)
			if err != nil {
				return notFound(c.kind, id, err)
			}
			return c.printRecord(cmd.OutOrStdout(), rec)
		},
	}
}

func (c *collection[T, P]) editCmd() *cobra.Command {
	mutable := c.mutableFields()
	values := make(map[string]*string, len(mutable))
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Изменить запись",
		Long: `Изменение записи по ID.

Если не задан ни один флаг, каждое поле запрашивается с текущим значением
по умолчанию: пустой ввод оставляет поле без изменений.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := c.env.app()
			if err != nil {
				return err
			}
			store := c.store(a)

			changes := make(map[string]string)
			for _, f := range mutable {
				if cmd.Flags().Changed(flagName(f)) {
					changes[f] = *values[f]
				}
			}

			if len(changes) == 0 {
				current, err := store.Get(cmd.Context(), id)
				if err != nil {
					return notFound(c.kind, id, err)
				}
				p := console.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
				for _, f := range mutable {
					old, err := P(&current).Field(f)
					if err != nil {
						return err
					}
					v, err := p.Ask(c.prompt(f), old)
					if err != nil {
						return err
					}
					if v != old {
						changes[f] = v
					}
				}
			}

			if len(changes) == 0 {
				console.Warn(cmd.OutOrStdout(), "Изменений нет")
				return nil
			}

			updated, err := store.UpdateFields(cmd.Context(), id, changes)
			if err != nil {
				return notFound(c.kind, id, err)
			}

			if c.env.json() {
				return console.WriteJSON(cmd.OutOrStdout(), updated)
			}
			console.Success(cmd.OutOrStdout(), "%s: запись %d обновлена", c.kind.DisplayName(), id)
			return nil
		},
	}
	for _, f := range mutable {
		values[f] = cmd.Flags().String(flagName(f), "", c.prompt(f))
	}
	return cmd
}

func (c *collection[T, P]) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Удалить запись",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := c.env.app()
			if err != nil {
				return err
			}
			removed, err := c.store(a).Delete(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case c.env.json():
				return console.WriteJSON(out, map[string]int{"id": id, "removed": removed})
			case removed == 0:
				console.Warn(out, "Запись с ID %d не найдена, ничего не удалено", id)
			default:
				console.Success(out, "%s: запись %d удалена", c.kind.DisplayName(), id)
			}
			return nil
		},
	}
}

func (c *collection[T, P]) exportCmd() *cobra.Command {
	var fields []string
	cmd := &cobra.Command{
		Use:   "export <file.csv>",
		Short: "Экспортировать коллекцию в CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.env.app()
			if err != nil {
				return err
			}
			selected := fields
			if len(selected) == 0 {
				selected = c.fields()
			}
			items, err := c.store(a).List(cmd.Context())
			if err != nil {
				return err
			}
			if err := csvio.Export[T, P](a.CSV(), args[0], items, selected); err != nil {
				return err
			}
			console.Success(cmd.OutOrStdout(), "Данные успешно экспортированы в %s (записей: %d)", args[0], len(items))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "поля через запятую (по умолчанию все)")
	return cmd
}

func (c *collection[T, P]) importCmd() *cobra.Command {
	var (
		fields []string
		merge  bool
	)
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Импортировать записи из CSV",
		Long: `Чтение записей из CSV-файла с заголовком.

Без --merge прочитанные записи только выводятся. С --merge они добавляются в
коллекцию и получают новые ID; колонка id файла не используется.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.env.app()
			if err != nil {
				return err
			}
			selected := fields
			if len(selected) == 0 {
				selected = slices.DeleteFunc(slices.Clone(c.fields()), func(f string) bool {
					return f == record.FieldID
				})
			}

			now := time.Now()
			items, err := csvio.Import[T, P](a.CSV(), args[0], selected, func() T {
				return c.newRecord(now)
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !merge {
				if err := c.printList(out, items); err != nil {
					return err
				}
				if !c.env.json() {
					fmt.Fprintln(out, "Используйте --merge, чтобы добавить записи в коллекцию.")
				}
				return nil
			}

			added, err := c.store(a).Append(cmd.Context(), items)
			if err != nil {
				return err
			}
			if c.env.json() {
				return console.WriteJSON(out, added)
			}
			console.Success(out, "%s: импортировано записей: %d", c.kind.DisplayName(), len(added))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "поля через запятую (по умолчанию все, кроме id)")
	cmd.Flags().BoolVar(&merge, "merge", false, "добавить прочитанные записи в коллекцию")
	return cmd
}

func (c *collection[T, P]) value(rec P, field string) string {
	v, err := rec.Field(field)
	if err != nil {
		return ""
	}
	if d, ok := c.display[field]; ok {
		v = d(v)
	}
	return v
}

func (c *collection[T, P]) printList(w io.Writer, items []T) error {
	if c.env.json() {
		return console.WriteJSON(w, items)
	}
	if len(items) == 0 {
		fmt.Fprintln(w, "Записи не найдены.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := make([]string, len(c.columns))
	for i, f := range c.columns {
		header[i] = c.label(f)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	row := make([]string, len(c.columns))
	for i := range items {
		for j, f := range c.columns {
			row[j] = strings.ReplaceAll(c.value(P(&items[i]), f), "\n", " ")
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func (c *collection[T, P]) printRecord(w io.Writer, rec T) error {
	if c.env.json() {
		return console.WriteJSON(w, rec)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	for _, f := range c.fields() {
		fmt.Fprintf(tw, "%s:\t%s\n", c.label(f), c.value(P(&rec), f))
	}
	return tw.Flush()
}
