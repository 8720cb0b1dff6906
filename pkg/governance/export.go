package governance

import (
	"github.com/bits-and-blooms/bloom/v3"
	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
	"github.com/tcfw/govern/pkg/embedding"
	"github.com/tcfw/govern/pkg/identity"
)

const voterFilterFalsePositive = 0.01

// NodeView is the read-only view of one participant within a proposal
type NodeView struct {
	ID          identity.ID        `yaml:"id"`
	Row         int                `yaml:"row"`
	Col         int                `yaml:"col"`
	Instance    int                `yaml:"instance"`
	Position    embedding.Position `yaml:"position"`
	Value       uint64             `yaml:"value"`
	VotingPower float64            `yaml:"votingPower"`
	HasVoted    bool               `yaml:"hasVoted"`
	Vote        *bool              `yaml:"vote,omitempty"`
	Weight      float64            `yaml:"weight,omitempty"`
}

// Snapshot is a consistent view of a proposal for renderers
type Snapshot struct {
	ID       string     `yaml:"id"`
	Proposal *Proposal  `yaml:"proposal"`
	Result   Result     `yaml:"result"`
	Nodes    []NodeView `yaml:"nodes"`

	// VoterFilter answers "may have voted" without scanning Nodes
	VoterFilter *bloom.BloomFilter `yaml:"-"`
}

// Snapshot captures the population, votes and tally of a proposal under a
// single read lock.
func (l *Ledger) Snapshot(proposal cid.Cid) (*Snapshot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	prop, ok := l.proposals[proposal.KeyString()]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownProposal, "%s", proposal)
	}

	res, err := l.checkConsensus(proposal)
	if err != nil {
		return nil, err
	}

	votes := l.votes[proposal.KeyString()]

	n := uint(len(votes))
	if n == 0 {
		n = 1
	}
	filter := bloom.NewWithEstimates(n, voterFilterFalsePositive)

	snap := &Snapshot{
		ID:          proposal.String(),
		Proposal:    prop,
		Result:      res,
		Nodes:       make([]NodeView, 0, l.index.Len()),
		VoterFilter: filter,
	}

	l.index.Ascend(func(p *Participant) bool {
		nv := NodeView{
			ID:          p.ID,
			Row:         p.Row,
			Col:         p.Col,
			Instance:    p.Instance,
			Position:    p.Position,
			Value:       p.Value,
			VotingPower: p.VotingPower,
		}

		if v, ok := votes[p.ID]; ok {
			val := v.Value
			nv.HasVoted = true
			nv.Vote = &val
			nv.Weight = v.Weight
			filter.AddString(string(p.ID))
		}

		snap.Nodes = append(snap.Nodes, nv)
		return true
	})

	return snap, nil
}

// MayHaveVoted tests the voter filter. False positives are possible, false
// negatives are not.
func (s *Snapshot) MayHaveVoted(id identity.ID) bool {
	if s.VoterFilter == nil {
		return false
	}

	return s.VoterFilter.TestString(string(id))
}

// EncodeVoterFilter serialises the voter filter for transport
func (s *Snapshot) EncodeVoterFilter() ([]byte, error) {
	if s.VoterFilter == nil {
		return nil, nil
	}

	return s.VoterFilter.GobEncode()
}
