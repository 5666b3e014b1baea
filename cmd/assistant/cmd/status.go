package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"assistant/cmd/assistant/cmd/console"
	"assistant/internal/app/assistant"
	"assistant/internal/domain/record"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Показать хранилище и количество записей",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return printStatus(cmd, app, jsonOutput)
	},
}

type statusReport struct {
	Backend  string         `json:"backend"`
	Format   string         `json:"format"`
	Location string         `json:"location"`
	IDPolicy string         `json:"id_policy"`
	Counts   map[string]int `json:"counts"`
}

func printStatus(cmd *cobra.Command, a *assistant.App, asJSON bool) error {
	counts, err := a.Counts(cmd.Context())
	if err != nil {
		return err
	}

	c := a.Config()
	report := statusReport{
		Backend:  c.Backend,
		Format:   c.Format,
		Location: a.Location(),
		IDPolicy: c.IDPolicy.String(),
		Counts:   make(map[string]int, len(counts)),
	}
	for kind, n := range counts {
		report.Counts[kind.String()] = n
	}

	if asJSON {
		return console.WriteJSON(cmd.OutOrStdout(), report)
	}
	return writeStatus(cmd.OutOrStdout(), report)
}

func writeStatus(w io.Writer, r statusReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Хранилище:\t%s (%s)\n", r.Backend, r.Format)
	fmt.Fprintf(tw, "Данные:\t%s\n", r.Location)
	fmt.Fprintf(tw, "Выдача ID:\t%s\n", r.IDPolicy)
	for _, kind := range record.Kinds() {
		fmt.Fprintf(tw, "%s:\t%d\n", kind.DisplayName(), r.Counts[kind.String()])
	}
	return tw.Flush()
}
