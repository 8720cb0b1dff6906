package cli

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tcfw/govern/pkg/governance"
)

var (
	simulateCmd = &cobra.Command{
		Use:   "simulate",
		Short: "Populate a ledger, vote on a proposal and report consensus",
		RunE:  runSimulate,
	}
)

type simOptions struct {
	seed          int64
	payload       string
	threshold     float64
	yes           float64
	participation float64
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().Int64("seed", 1, "seed of the simulated voting behaviour")
	cmd.Flags().String("payload", "proposal", "proposal payload")
	cmd.Flags().Float64("threshold", 0, "required yes ratio, 0 uses the configured default")
	cmd.Flags().Float64("yes", 0.7, "probability a voter votes yes")
	cmd.Flags().Float64("participation", 1, "probability a participant votes at all")
}

func simFlags(cmd *cobra.Command) simOptions {
	o := simOptions{}
	o.seed, _ = cmd.Flags().GetInt64("seed")
	o.payload, _ = cmd.Flags().GetString("payload")
	o.threshold, _ = cmd.Flags().GetFloat64("threshold")
	o.yes, _ = cmd.Flags().GetFloat64("yes")
	o.participation, _ = cmd.Flags().GetFloat64("participation")
	return o
}

func init() {
	addSimFlags(simulateCmd)
	simulateCmd.Flags().Bool("metrics", false, "print ledger metrics after the run")
}

// simulate populates the ledger and casts votes drawn from a seeded source.
// The first participant is the proposer.
func simulate(ctx context.Context, e *engine, o simOptions) (*governance.Proposal, error) {
	ps, err := e.populate(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "populating ledger")
	}

	var popts []governance.ProposalOption
	if o.threshold != 0 {
		popts = append(popts, governance.WithThreshold(o.threshold))
	}

	prop, err := e.ledger.CreateProposal(ctx, ps[0].ID, []byte(o.payload), popts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating proposal")
	}

	rng := rand.New(rand.NewSource(o.seed))

	for _, p := range ps {
		votes := rng.Float64() < o.participation
		yes := rng.Float64() < o.yes

		if !votes {
			continue
		}

		if _, err := e.ledger.CastVote(ctx, p.ID, prop.ID, yes); err != nil {
			return nil, errors.Wrapf(err, "casting vote of %s", p.ID)
		}
	}

	return prop, nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	e, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	prop, err := simulate(ctx, e, simFlags(cmd))
	if err != nil {
		return err
	}

	res, err := e.ledger.CheckConsensus(prop.ID)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "proposal\t%s\n", prop.ID)
	fmt.Fprintf(w, "proposer\t%s\n", prop.Proposer)
	fmt.Fprintf(w, "votes\t%d\n", res.Votes)
	fmt.Fprintf(w, "yes weight\t%.4f\n", res.YesWeight)
	fmt.Fprintf(w, "no weight\t%.4f\n", res.NoWeight)
	fmt.Fprintf(w, "ratio\t%.4f\n", res.Ratio)
	fmt.Fprintf(w, "threshold\t%.4f\n", res.Threshold)
	fmt.Fprintf(w, "reached\t%t\n", res.Reached)
	if err := w.Flush(); err != nil {
		return err
	}

	if m, _ := cmd.Flags().GetBool("metrics"); m {
		return printMetrics(e)
	}

	return nil
}

func printMetrics(e *engine) error {
	mfs, err := e.metrics.Gather()
	if err != nil {
		return errors.Wrap(err, "gathering metrics")
	}

	sort.Slice(mfs, func(i, j int) bool { return mfs[i].GetName() < mfs[j].GetName() })

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w)

	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			name := mf.GetName()
			for _, l := range m.GetLabel() {
				name += fmt.Sprintf(" %s=%s", l.GetName(), l.GetValue())
			}

			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(w, "%s\t%v\n", name, m.GetCounter().GetValue())
			case m.GetGauge() != nil:
				fmt.Fprintf(w, "%s\t%v\n", name, m.GetGauge().GetValue())
			case m.GetHistogram() != nil:
				fmt.Fprintf(w, "%s\tcount=%d sum=%.4f\n", name, m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum())
			}
		}
	}

	return w.Flush()
}
