package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/multiformats/go-multibase"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tcfw/govern/pkg/governance"
)

var (
	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Simulate a proposal and export a snapshot for renderers",
		RunE:  runExport,
	}
)

func init() {
	addSimFlags(exportCmd)
	exportCmd.Flags().StringP("out", "o", "-", "output file, - for stdout")
	exportCmd.Flags().Bool("history", false, "include the vote history (requires --votelog)")
}

type exportDoc struct {
	governance.Snapshot `yaml:",inline"`

	Payload     string             `yaml:"payload"`
	VoterFilter string             `yaml:"voterFilter"`
	History     []*governance.Vote `yaml:"history,omitempty"`
}

func runExport(cmd *cobra.Command, args []string) error {
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

	snap, err := e.ledger.Snapshot(prop.ID)
	if err != nil {
		return err
	}

	doc, err := newExportDoc(snap)
	if err != nil {
		return err
	}

	if h, _ := cmd.Flags().GetBool("history"); h {
		doc.History, err = e.ledger.VoteHistory(ctx, prop.ID)
		if err != nil {
			return errors.Wrap(err, "reading vote history")
		}
	}

	var out io.Writer = os.Stdout
	if path, _ := cmd.Flags().GetString("out"); path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrap(err, "creating export file")
		}
		defer f.Close()
		out = f
	}

	return writeExport(out, doc)
}

func newExportDoc(snap *governance.Snapshot) (*exportDoc, error) {
	fb, err := snap.EncodeVoterFilter()
	if err != nil {
		return nil, errors.Wrap(err, "encoding voter filter")
	}

	filter, err := multibase.Encode(multibase.Base64, fb)
	if err != nil {
		return nil, errors.Wrap(err, "encoding voter filter")
	}

	return &exportDoc{
		Snapshot:    *snap,
		Payload:     string(snap.Proposal.Payload),
		VoterFilter: filter,
	}, nil
}

func writeExport(w io.Writer, doc *exportDoc) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, "encoding export")
	}

	return enc.Close()
}
