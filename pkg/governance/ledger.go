package governance

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/btree"
	lru "github.com/hashicorp/golang-lru"
	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/tcfw/govern/internal/utils/logging"
	"github.com/tcfw/govern/pkg/embedding"
	"github.com/tcfw/govern/pkg/identity"
	"github.com/tcfw/govern/pkg/weight"
)

const participantIndexDegree = 16

// Ledger is the in-memory registry of participants, proposals and votes.
//
// Reads take the ledger read lock and see a consistent snapshot. Casts for
// the same (participant, proposal) pair are serialised by a pair lock held
// from timestamp capture until the vote is stored, so the vote that ends
// up live is always the one with the latest timestamp.
type Ledger struct {
	provider identity.Provider
	weights  *weight.Calculator

	decayHalfLife  time.Duration
	proximityScale float64
	threshold      float64
	now            func() time.Time

	logger     *logrus.Entry
	voteLog    VoteLog
	registerer prometheus.Registerer
	metrics    *metrics

	tallyCacheSize int
	tallies        *lru.Cache

	mu           sync.RWMutex
	participants map[identity.ID]*Participant
	index        *btree.BTreeG[*Participant]
	proposals    map[string]*Proposal
	votes        map[string]map[identity.ID]*Vote
	generation   map[string]uint64

	pairMu    sync.Mutex
	pairLocks map[pairKey]*pairLock
}

type pairKey struct {
	participant identity.ID
	proposal    string
}

type pairLock struct {
	sync.Mutex
	refs int
}

func NewLedger(provider identity.Provider, opts ...Option) (*Ledger, error) {
	if provider == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "nil identity provider")
	}

	l := &Ledger{
		provider:       provider,
		decayHalfLife:  DefaultDecayHalfLife,
		proximityScale: DefaultProximityScale,
		threshold:      weight.PhiConjugate,
		now:            time.Now,
		logger:         logging.Component("ledger"),
		tallyCacheSize: DefaultTallyCacheSize,

		participants: make(map[identity.ID]*Participant),
		index: btree.NewG(participantIndexDegree, func(a, b *Participant) bool {
			return a.less(b)
		}),
		proposals:  make(map[string]*Proposal),
		votes:      make(map[string]map[identity.ID]*Vote),
		generation: make(map[string]uint64),
		pairLocks:  make(map[pairKey]*pairLock),
	}

	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, errors.Wrap(err, "applying ledger option")
		}
	}

	if l.weights == nil {
		c, err := weight.NewCalculator(weight.DefaultConfig())
		if err != nil {
			return nil, err
		}
		l.weights = c
	}

	tallies, err := lru.New(l.tallyCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "creating tally cache")
	}
	l.tallies = tallies

	m, err := newMetrics(l.registerer)
	if err != nil {
		return nil, errors.Wrap(err, "registering metrics")
	}
	l.metrics = m

	return l, nil
}

// CreateParticipant derives the identity of a cell instance and registers
// it with its voting power.
func (l *Ledger) CreateParticipant(ctx context.Context, row, col, instance int, value uint64, pos embedding.Position) (*Participant, error) {
	p, err := l.newParticipant(ctx, row, col, instance, value, pos)
	if err != nil {
		return nil, err
	}

	if err := l.register(p); err != nil {
		return nil, err
	}

	return p, nil
}

// newParticipant derives the identity and voting power of a cell instance
// without registering it.
func (l *Ledger) newParticipant(ctx context.Context, row, col, instance int, value uint64, pos embedding.Position) (*Participant, error) {
	id, err := l.provider.Derive(ctx, row, col, instance)
	if err == nil && id == "" {
		err = errors.New("empty identity")
	}
	if err != nil {
		l.metrics.failures.WithLabelValues("derive").Inc()
		l.logger.WithError(err).WithField("path", identity.Path(row, col, instance)).Error("deriving identity")
		return nil, errors.Wrapf(ErrIdentityDerivation, "%s: %s", identity.Path(row, col, instance), err)
	}

	return &Participant{
		ID:          id,
		Row:         row,
		Col:         col,
		Instance:    instance,
		Value:       value,
		Position:    pos,
		VotingPower: l.weights.VotingPower(pos, value),
		Influence:   l.weights.Influence(pos, value),
	}, nil
}

// register adds ps in one step: either every participant is stored or, on
// a duplicate identity, none is.
func (l *Ledger) register(ps ...*Participant) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	seen := make(map[identity.ID]struct{}, len(ps))
	for _, p := range ps {
		if _, ok := l.participants[p.ID]; ok {
			return errors.Wrapf(ErrDuplicateParticipant, "%s", p.ID)
		}
		if _, ok := seen[p.ID]; ok {
			return errors.Wrapf(ErrDuplicateParticipant, "%s", p.ID)
		}
		seen[p.ID] = struct{}{}
	}

	for _, p := range ps {
		l.participants[p.ID] = p
		l.index.ReplaceOrInsert(p)
		l.metrics.participants.Inc()

		l.logger.WithField("id", p.ID).WithField("power", p.VotingPower).Debug("registered participant")
	}

	return nil
}

// CreateProposal registers a proposal addressed by the hash of its
// proposer, payload and creation time. Creating an identical proposal
// again returns the stored one unchanged.
func (l *Ledger) CreateProposal(ctx context.Context, proposer identity.ID, payload []byte, opts ...ProposalOption) (*Proposal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o := &proposalOptions{}
	for _, opt := range opts {
		opt(o)
	}

	threshold := l.threshold
	if o.threshold != nil {
		threshold = *o.threshold
	}
	if err := checkThreshold(threshold); err != nil {
		return nil, err
	}

	createdAt := l.now()
	if o.createdAt != nil {
		createdAt = *o.createdAt
	}

	l.mu.RLock()
	_, known := l.participants[proposer]
	l.mu.RUnlock()

	if !known {
		return nil, errors.Wrapf(ErrUnknownParticipant, "proposer %s", proposer)
	}

	id, err := ProposalID(proposer, payload, createdAt)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.proposals[id.KeyString()]; ok {
		return existing, nil
	}

	p := &Proposal{
		ID:        id,
		Proposer:  proposer,
		Payload:   append([]byte(nil), payload...),
		CreatedAt: createdAt,
		Threshold: threshold,
	}

	l.proposals[id.KeyString()] = p
	l.votes[id.KeyString()] = make(map[identity.ID]*Vote)
	l.metrics.proposals.Inc()

	l.logger.WithField("id", id).WithField("proposer", proposer).Debug("created proposal")

	return p, nil
}

// CastVote records the vote of participant on proposal, replacing any
// previous vote of that participant on the same proposal.
func (l *Ledger) CastVote(ctx context.Context, participant identity.ID, proposal cid.Cid, value bool) (*Vote, error) {
	l.mu.RLock()
	voter, ok := l.participants[participant]
	prop, pok := l.proposals[proposal.KeyString()]
	var proposer *Participant
	if pok {
		proposer = l.participants[prop.Proposer]
	}
	l.mu.RUnlock()

	if !ok {
		return nil, errors.Wrapf(ErrUnknownParticipant, "%s", participant)
	}
	if !pok {
		return nil, errors.Wrapf(ErrUnknownProposal, "%s", proposal)
	}

	unlock := l.lockPair(pairKey{participant, proposal.KeyString()})
	defer unlock()

	ts := l.now()
	decay := l.timeDecay(ts.Sub(prop.CreatedAt))
	proximity := l.proximityBoost(voter.Position.PlanarDistanceTo(proposer.Position))

	payload, err := VotePayload(participant, proposal, value, ts)
	if err != nil {
		return nil, err
	}

	sig, err := l.provider.Sign(ctx, participant, payload)
	if err != nil {
		l.metrics.failures.WithLabelValues("sign").Inc()
		l.logger.WithError(err).WithField("participant", participant).Error("signing vote")
		return nil, errors.Wrapf(ErrSignature, "%s: %s", participant, err)
	}

	v := &Vote{
		Participant: participant,
		Proposal:    proposal,
		Value:       value,
		Weight:      voter.VotingPower * decay * proximity,
		Decay:       decay,
		Proximity:   proximity,
		Timestamp:   ts,
		Signature:   sig,
	}

	if l.voteLog != nil {
		if err := l.voteLog.Append(ctx, v); err != nil {
			return nil, errors.Wrap(err, "appending to vote log")
		}
	}

	l.mu.Lock()
	_, replaced := l.votes[proposal.KeyString()][participant]
	l.votes[proposal.KeyString()][participant] = v
	l.generation[proposal.KeyString()]++
	l.mu.Unlock()

	l.metrics.observeVote(v, replaced)

	l.logger.WithField("participant", participant).
		WithField("proposal", proposal).
		WithField("weight", v.Weight).
		WithField("replaced", replaced).
		Debug("cast vote")

	return v, nil
}

// VerifyVote checks the vote signature with the identity provider
func (l *Ledger) VerifyVote(v *Vote) bool {
	if v == nil {
		return false
	}

	payload, err := VotePayload(v.Participant, v.Proposal, v.Value, v.Timestamp)
	if err != nil {
		return false
	}

	return l.provider.Verify(payload, v.Signature, v.Participant)
}

func (l *Ledger) timeDecay(elapsed time.Duration) float64 {
	// clock skew between proposal creation and vote capture
	if elapsed < 0 {
		elapsed = 0
	}

	return math.Exp(-elapsed.Seconds() / (weight.Phi * l.decayHalfLife.Seconds()))
}

func (l *Ledger) proximityBoost(distance float64) float64 {
	return 1 + 1/(1+distance/(weight.Phi*l.proximityScale))
}

func (l *Ledger) lockPair(k pairKey) func() {
	l.pairMu.Lock()
	pl, ok := l.pairLocks[k]
	if !ok {
		pl = &pairLock{}
		l.pairLocks[k] = pl
	}
	pl.refs++
	l.pairMu.Unlock()

	pl.Lock()

	return func() {
		pl.Unlock()

		l.pairMu.Lock()
		pl.refs--
		if pl.refs == 0 {
			delete(l.pairLocks, k)
		}
		l.pairMu.Unlock()
	}
}

func (l *Ledger) Participant(id identity.ID) (*Participant, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.participants[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownParticipant, "%s", id)
	}

	return p, nil
}

func (l *Ledger) Proposal(id cid.Cid) (*Proposal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.proposals[id.KeyString()]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownProposal, "%s", id)
	}

	return p, nil
}

// ListParticipants returns all participants ordered by row, col, instance
func (l *Ledger) ListParticipants() []*Participant {
	l.mu.RLock()
	defer l.mu.RUnlock()

	list := make([]*Participant, 0, l.index.Len())
	l.index.Ascend(func(p *Participant) bool {
		list = append(list, p)
		return true
	})

	return list
}

// ListProposals returns all proposals ordered by creation time then id
func (l *Ledger) ListProposals() []*Proposal {
	l.mu.RLock()
	list := make([]*Proposal, 0, len(l.proposals))
	for _, p := range l.proposals {
		list = append(list, p)
	}
	l.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID.KeyString() < list[j].ID.KeyString()
	})

	return list
}

// ListVotes returns the live votes of a proposal ordered by participant id
func (l *Ledger) ListVotes(proposal cid.Cid) ([]*Vote, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.listVotes(proposal)
}

func (l *Ledger) listVotes(proposal cid.Cid) ([]*Vote, error) {
	votes, ok := l.votes[proposal.KeyString()]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownProposal, "%s", proposal)
	}

	list := make([]*Vote, 0, len(votes))
	for _, v := range votes {
		list = append(list, v)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].Participant < list[j].Participant
	})

	return list, nil
}

// VoteHistory returns every vote ever cast on proposal in cast order,
// including overwritten ones. It requires a vote log.
func (l *Ledger) VoteHistory(ctx context.Context, proposal cid.Cid) ([]*Vote, error) {
	if l.voteLog == nil {
		return nil, ErrNoVoteLog
	}

	if _, err := l.Proposal(proposal); err != nil {
		return nil, err
	}

	return l.voteLog.History(ctx, proposal)
}
