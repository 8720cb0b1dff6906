package governance

import (
	"sort"

	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Result is the weighted tally of a proposal
type Result struct {
	Reached     bool    `yaml:"reached"`
	YesWeight   float64 `yaml:"yesWeight"`
	NoWeight    float64 `yaml:"noWeight"`
	TotalWeight float64 `yaml:"totalWeight"`
	Ratio       float64 `yaml:"ratio"`
	Threshold   float64 `yaml:"threshold"`
	Votes       int     `yaml:"votes"`
}

type tally struct {
	generation uint64
	result     Result
}

// Evaluate tallies votes against threshold. Weights are summed in
// participant id order so the result does not depend on the order of votes.
// Consensus is reached when there is any weight and the yes ratio is at
// least threshold.
func Evaluate(votes []Vote, threshold float64) Result {
	ordered := make([]*Vote, len(votes))
	for i := range votes {
		ordered[i] = &votes[i]
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Participant < ordered[j].Participant
	})

	yes := make([]float64, 0, len(ordered))
	no := make([]float64, 0, len(ordered))

	for _, v := range ordered {
		if v.Value {
			yes = append(yes, v.Weight)
		} else {
			no = append(no, v.Weight)
		}
	}

	r := Result{
		YesWeight: floats.Sum(yes),
		NoWeight:  floats.Sum(no),
		Threshold: threshold,
		Votes:     len(votes),
	}
	r.TotalWeight = r.YesWeight + r.NoWeight

	if r.TotalWeight > 0 {
		r.Ratio = r.YesWeight / r.TotalWeight
	}

	r.Reached = r.TotalWeight > 0 && r.Ratio >= threshold

	return r
}

// CheckConsensus evaluates the live votes of a proposal. Results are
// cached until the next vote on the proposal.
func (l *Ledger) CheckConsensus(proposal cid.Cid) (Result, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.checkConsensus(proposal)
}

func (l *Ledger) checkConsensus(proposal cid.Cid) (Result, error) {
	key := proposal.KeyString()

	prop, ok := l.proposals[key]
	if !ok {
		return Result{}, errors.Wrapf(ErrUnknownProposal, "%s", proposal)
	}

	gen := l.generation[key]

	if c, ok := l.tallies.Get(key); ok {
		if t := c.(tally); t.generation == gen {
			l.metrics.tallyHits.Inc()
			return t.result, nil
		}
	}

	votes := make([]Vote, 0, len(l.votes[key]))
	for _, v := range l.votes[key] {
		votes = append(votes, *v)
	}

	r := Evaluate(votes, prop.Threshold)
	l.tallies.Add(key, tally{gen, r})

	return r, nil
}
