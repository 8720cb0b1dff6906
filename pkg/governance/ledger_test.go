package governance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tcfw/govern/pkg/embedding"
	"github.com/tcfw/govern/pkg/identity"
	"github.com/tcfw/govern/pkg/identity/mocks"
	"github.com/tcfw/govern/pkg/weight"
)

var (
	testSeed  = []byte("0123456789abcdef0123456789abcdef")
	testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.t = c.t.Add(d)
}

func mustProvider(t *testing.T) identity.Provider {
	p, err := identity.NewEd25519Provider(testSeed)
	if err != nil {
		t.Fatal(err)
	}

	return p
}

func newTestLedger(t *testing.T, opts ...Option) (*Ledger, *testClock) {
	p := mustProvider(t)

	clock := &testClock{t: testEpoch}

	l, err := NewLedger(p, append([]Option{WithClock(clock.Now)}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}

	return l, clock
}

func mustParticipant(t *testing.T, l *Ledger, row, col, instance int, value uint64, pos embedding.Position) *Participant {
	p, err := l.CreateParticipant(context.Background(), row, col, instance, value, pos)
	if err != nil {
		t.Fatal(err)
	}

	return p
}

func mustProposal(t *testing.T, l *Ledger, proposer identity.ID, payload string, opts ...ProposalOption) *Proposal {
	p, err := l.CreateProposal(context.Background(), proposer, []byte(payload), opts...)
	if err != nil {
		t.Fatal(err)
	}

	return p
}

func TestNewLedgerInvalid(t *testing.T) {
	_, err := NewLedger(nil)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	p := mocks.NewProvider(t)

	_, err = NewLedger(p, WithDecayHalfLife(0))
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = NewLedger(p, WithProximityScale(-1))
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = NewLedger(p, WithDefaultThreshold(1.5))
	assert.True(t, errors.Is(err, ErrInvalidThreshold))

	_, err = NewLedger(p, WithWeights(weight.Config{}))
	assert.True(t, errors.Is(err, weight.ErrInvalidConfig))
}

func TestCreateParticipant(t *testing.T) {
	l, _ := newTestLedger(t)

	pos := embedding.Position{X: 100, Layer: 1, Distance: 100, Kind: embedding.Concentric}
	p := mustParticipant(t, l, 1, 0, 0, 1, pos)

	calc, err := weight.NewCalculator(weight.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, calc.VotingPower(pos, 1), p.VotingPower)
	assert.Equal(t, calc.Influence(pos, 1), p.Influence)
	assert.GreaterOrEqual(t, p.VotingPower, 0.0)

	got, err := l.Participant(p.ID)
	require.NoError(t, err)
	assert.Same(t, p, got)

	_, err = l.CreateParticipant(context.Background(), 1, 0, 0, 1, pos)
	assert.True(t, errors.Is(err, ErrDuplicateParticipant))

	_, err = l.Participant("nobody")
	assert.True(t, errors.Is(err, ErrUnknownParticipant))
}

func TestCreateParticipantDeriveFailure(t *testing.T) {
	p := mocks.NewProvider(t)
	p.On("Derive", mock.Anything, 2, 1, 0).Return(identity.ID(""), errors.New("keystore locked"))
	p.On("Derive", mock.Anything, 2, 1, 1).Return(identity.ID(""), nil)

	l, err := NewLedger(p)
	if err != nil {
		t.Fatal(err)
	}

	_, err = l.CreateParticipant(context.Background(), 2, 1, 0, 2, embedding.Position{})
	assert.True(t, errors.Is(err, ErrIdentityDerivation))

	_, err = l.CreateParticipant(context.Background(), 2, 1, 1, 2, embedding.Position{})
	assert.True(t, errors.Is(err, ErrIdentityDerivation))

	assert.Empty(t, l.ListParticipants())
}

func TestCreateProposal(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	p := mustParticipant(t, l, 0, 0, 0, 1, embedding.Position{})

	_, err := l.CreateProposal(ctx, "nobody", []byte("x"))
	assert.True(t, errors.Is(err, ErrUnknownParticipant))

	for _, th := range []float64{0, -0.1, 1.01} {
		_, err = l.CreateProposal(ctx, p.ID, []byte("x"), WithThreshold(th))
		assert.True(t, errors.Is(err, ErrInvalidThreshold), "threshold %v", th)
	}

	prop := mustProposal(t, l, p.ID, "raise quorum")
	assert.Equal(t, weight.PhiConjugate, prop.Threshold)
	assert.Equal(t, testEpoch, prop.CreatedAt)
	assert.Equal(t, p.ID, prop.Proposer)

	expected, err := ProposalID(p.ID, []byte("raise quorum"), testEpoch)
	require.NoError(t, err)
	assert.Equal(t, expected, prop.ID)

	strict := mustProposal(t, l, p.ID, "unanimous", WithThreshold(1))
	assert.Equal(t, 1.0, strict.Threshold)
}

func TestCreateProposalIdempotent(t *testing.T) {
	l, clock := newTestLedger(t)

	p := mustParticipant(t, l, 0, 0, 0, 1, embedding.Position{})

	a := mustProposal(t, l, p.ID, "payload")
	b := mustProposal(t, l, p.ID, "payload", WithThreshold(0.9))
	assert.Same(t, a, b)
	assert.Equal(t, weight.PhiConjugate, b.Threshold)

	clock.Advance(time.Second)

	c := mustProposal(t, l, p.ID, "payload")
	assert.NotEqual(t, a.ID, c.ID)

	d := mustProposal(t, l, p.ID, "payload", WithCreatedAt(testEpoch))
	assert.Same(t, a, d)

	assert.Len(t, l.ListProposals(), 2)
}

func TestProposalIDDeterministic(t *testing.T) {
	a, err := ProposalID("alice", []byte("x"), testEpoch)
	require.NoError(t, err)

	b, err := ProposalID("alice", []byte("x"), testEpoch)
	require.NoError(t, err)

	c, err := ProposalID("alice", []byte("y"), testEpoch)
	require.NoError(t, err)

	d, err := ProposalID("bob", []byte("x"), testEpoch)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
	assert.Equal(t, uint64(cid.Raw), a.Type())
}

func TestCastVoteUnknown(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	p := mustParticipant(t, l, 0, 0, 0, 1, embedding.Position{})
	prop := mustProposal(t, l, p.ID, "x")

	_, err := l.CastVote(ctx, "nobody", prop.ID, true)
	assert.True(t, errors.Is(err, ErrUnknownParticipant))

	missing, err := ProposalID(p.ID, []byte("never created"), testEpoch)
	require.NoError(t, err)

	_, err = l.CastVote(ctx, p.ID, missing, true)
	assert.True(t, errors.Is(err, ErrUnknownProposal))

	_, err = l.ListVotes(missing)
	assert.True(t, errors.Is(err, ErrUnknownProposal))

	_, err = l.CheckConsensus(missing)
	assert.True(t, errors.Is(err, ErrUnknownProposal))
}

func TestCastVoteSignatureFailure(t *testing.T) {
	p := mocks.NewProvider(t)
	p.On("Derive", mock.Anything, 0, 0, 0).Return(identity.ID("alice"), nil)
	p.On("Sign", mock.Anything, identity.ID("alice"), mock.Anything).Return(nil, errors.New("hsm offline"))

	l, err := NewLedger(p)
	if err != nil {
		t.Fatal(err)
	}

	mustParticipant(t, l, 0, 0, 0, 1, embedding.Position{})
	prop := mustProposal(t, l, "alice", "x")

	_, err = l.CastVote(context.Background(), "alice", prop.ID, true)
	assert.True(t, errors.Is(err, ErrSignature))

	votes, err := l.ListVotes(prop.ID)
	require.NoError(t, err)
	assert.Empty(t, votes)
}

func TestCastVoteWeight(t *testing.T) {
	l, clock := newTestLedger(t)
	ctx := context.Background()

	proposer := mustParticipant(t, l, 0, 0, 0, 1, embedding.Position{})
	far := mustParticipant(t, l, 1, 0, 0, 1, embedding.Position{X: weight.Phi * 100, Layer: 1, Distance: weight.Phi * 100})

	prop := mustProposal(t, l, proposer.ID, "x")

	own, err := l.CastVote(ctx, proposer.ID, prop.ID, true)
	require.NoError(t, err)

	assert.Equal(t, 1.0, own.Decay)
	assert.Equal(t, 2.0, own.Proximity)
	assert.InDelta(t, proposer.VotingPower*2, own.Weight, 1e-12)

	clock.Advance(time.Duration(weight.Phi * float64(time.Hour)))

	v, err := l.CastVote(ctx, far.ID, prop.ID, false)
	require.NoError(t, err)

	assert.InDelta(t, 0.36787944117144233, v.Decay, 1e-9)
	assert.InDelta(t, 1.5, v.Proximity, 1e-12)
	assert.InDelta(t, far.VotingPower*v.Decay*1.5, v.Weight, 1e-12)
	assert.Equal(t, testEpoch.Add(time.Duration(weight.Phi*float64(time.Hour))), v.Timestamp)
}

func TestCastVoteProximityIgnoresDepth(t *testing.T) {
	l, _ := newTestLedger(t)

	proposer := mustParticipant(t, l, 0, 0, 0, 1, embedding.Position{})
	above := mustParticipant(t, l, 1, 0, 0, 1, embedding.Position{Z: 100})
	prop := mustProposal(t, l, proposer.ID, "x")

	v, err := l.CastVote(context.Background(), above.ID, prop.ID, true)
	require.NoError(t, err)

	assert.Equal(t, 2.0, v.Proximity)
	assert.InDelta(t, above.VotingPower*2, v.Weight, 1e-12)
}

func TestCastVoteClockSkew(t *testing.T) {
	l, clock := newTestLedger(t)

	p := mustParticipant(t, l, 0, 0, 0, 1, embedding.Position{})
	prop := mustProposal(t, l, p.ID, "x")

	clock.Advance(-time.Minute)

	v, err := l.CastVote(context.Background(), p.ID, prop.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v.Decay)
}

func TestVoteOverwrite(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	a := mustParticipant(t, l, 0, 0, 0, 1, embedding.Position{})
	b := mustParticipant(t, l, 1, 0, 0, 1, embedding.Position{X: 50, Distance: 50, Layer: 1})
	prop := mustProposal(t, l, a.ID, "x")

	_, err := l.CastVote(ctx, a.ID, prop.ID, true)
	require.NoError(t, err)

	bv, err := l.CastVote(ctx, b.ID, prop.ID, true)
	require.NoError(t, err)

	before, err := l.CheckConsensus(prop.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, before.Votes)
	assert.Equal(t, 0.0, before.NoWeight)

	av, err := l.CastVote(ctx, a.ID, prop.ID, false)
	require.NoError(t, err)

	after, err := l.CheckConsensus(prop.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, after.Votes)
	assert.InDelta(t, bv.Weight, after.YesWeight, 1e-12)
	assert.InDelta(t, av.Weight, after.NoWeight, 1e-12)
	assert.InDelta(t, av.Weight+bv.Weight, after.TotalWeight, 1e-12)

	votes, err := l.ListVotes(prop.ID)
	require.NoError(t, err)
	require.Len(t, votes, 2)
	assert.True(t, votes[0].Participant < votes[1].Participant)
}

func TestVerifyVote(t *testing.T) {
	l, _ := newTestLedger(t)

	p := mustParticipant(t, l, 0, 0, 0, 1, embedding.Position{})
	prop := mustProposal(t, l, p.ID, "x")

	v, err := l.CastVote(context.Background(), p.ID, prop.ID, true)
	require.NoError(t, err)

	assert.True(t, l.VerifyVote(v))

	tampered := *v
	tampered.Value = false
	assert.False(t, l.VerifyVote(&tampered))
	assert.False(t, l.VerifyVote(nil))
}

func TestConcurrentCasts(t *testing.T) {
	log := NewMemVoteLog()
	l, _ := newTestLedger(t, WithVoteLog(log))
	ctx := context.Background()

	voters := make([]*Participant, 4)
	for i := range voters {
		voters[i] = mustParticipant(t, l, 3, i, 0, 3, embedding.Position{X: float64(i)})
	}
	prop := mustProposal(t, l, voters[0].ID, "x")

	const rounds = 25

	var wg sync.WaitGroup
	for _, v := range voters {
		for i := 0; i < rounds; i++ {
			wg.Add(1)
			go func(id identity.ID, value bool) {
				defer wg.Done()

				_, err := l.CastVote(ctx, id, prop.ID, value)
				assert.NoError(t, err)

				_, err = l.CheckConsensus(prop.ID)
				assert.NoError(t, err)
			}(v.ID, i%2 == 0)
		}
	}
	wg.Wait()

	votes, err := l.ListVotes(prop.ID)
	require.NoError(t, err)
	assert.Len(t, votes, len(voters))

	history, err := l.VoteHistory(ctx, prop.ID)
	require.NoError(t, err)
	assert.Len(t, history, len(voters)*rounds)

	res, err := l.CheckConsensus(prop.ID)
	require.NoError(t, err)
	assert.Equal(t, len(voters), res.Votes)

	l.pairMu.Lock()
	assert.Empty(t, l.pairLocks)
	l.pairMu.Unlock()
}

func TestVoteHistory(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	p := mustParticipant(t, l, 0, 0, 0, 1, embedding.Position{})
	prop := mustProposal(t, l, p.ID, "x")

	_, err := l.VoteHistory(ctx, prop.ID)
	assert.True(t, errors.Is(err, ErrNoVoteLog))

	logged, _ := newTestLedger(t, WithVoteLog(NewMemVoteLog()))
	p = mustParticipant(t, logged, 0, 0, 0, 1, embedding.Position{})
	prop = mustProposal(t, logged, p.ID, "x")

	for _, v := range []bool{true, false, true} {
		_, err := logged.CastVote(ctx, p.ID, prop.ID, v)
		require.NoError(t, err)
	}

	history, err := logged.VoteHistory(ctx, prop.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.True(t, history[0].Value)
	assert.False(t, history[1].Value)
	assert.True(t, history[2].Value)

	votes, err := logged.ListVotes(prop.ID)
	require.NoError(t, err)
	assert.Len(t, votes, 1)
}

func TestListParticipantsOrder(t *testing.T) {
	l, _ := newTestLedger(t)

	mustParticipant(t, l, 2, 1, 1, 2, embedding.Position{})
	mustParticipant(t, l, 0, 0, 0, 1, embedding.Position{})
	mustParticipant(t, l, 2, 1, 0, 2, embedding.Position{})
	mustParticipant(t, l, 1, 1, 0, 1, embedding.Position{})

	list := l.ListParticipants()
	require.Len(t, list, 4)

	got := [][3]int{}
	for _, p := range list {
		got = append(got, [3]int{p.Row, p.Col, p.Instance})
	}

	assert.Equal(t, [][3]int{{0, 0, 0}, {1, 1, 0}, {2, 1, 0}, {2, 1, 1}}, got)
}
