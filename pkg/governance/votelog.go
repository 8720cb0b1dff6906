package governance

import (
	"context"
	"sync"

	"github.com/ipfs/go-cid"
)

// VoteLog is an append-only record of every vote cast, kept alongside the
// last-writer-wins live vote set.
type VoteLog interface {
	Append(ctx context.Context, v *Vote) error
	History(ctx context.Context, proposal cid.Cid) ([]*Vote, error)
}

var _ VoteLog = (*MemVoteLog)(nil)

type MemVoteLog struct {
	mu      sync.RWMutex
	entries map[string][]*Vote
}

func NewMemVoteLog() *MemVoteLog {
	return &MemVoteLog{entries: make(map[string][]*Vote)}
}

func (m *MemVoteLog) Append(_ context.Context, v *Vote) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *v
	m.entries[v.Proposal.KeyString()] = append(m.entries[v.Proposal.KeyString()], &cp)

	return nil
}

func (m *MemVoteLog) History(_ context.Context, proposal cid.Cid) ([]*Vote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h := m.entries[proposal.KeyString()]
	out := make([]*Vote, len(h))
	copy(out, h)

	return out, nil
}
