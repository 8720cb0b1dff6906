package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	populationCmd = &cobra.Command{
		Use:   "population",
		Short: "Print the generated participants and population statistics",
		RunE:  runPopulation,
	}
)

func init() {
	populationCmd.Flags().Bool("stats-only", false, "only print statistics")
}

func runPopulation(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	e, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	ps, err := e.populate(ctx)
	if err != nil {
		return err
	}

	if statsOnly, _ := cmd.Flags().GetBool("stats-only"); !statsOnly {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tROW\tCOL\tINST\tVALUE\tLAYER\tDIST\tPOWER")
		for _, p := range ps {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%.2f\t%.4f\n",
				p.ID, p.Row, p.Col, p.Instance, p.Value, p.Position.Layer, p.Position.Distance, p.VotingPower)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Println()
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()

	return enc.Encode(e.ledger.Stats())
}
