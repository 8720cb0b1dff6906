package storage

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/tcfw/govern/internal/utils/logging"
	"github.com/tcfw/govern/pkg/governance"
)

var (
	_ governance.VoteLog = (*PebbleVoteLog)(nil)
)

const (
	cacheSize = 1 << 20 * 16

	tableSep           byte = ':'
	tableSepUpperBound      = tableSep + 1
)

type metadataKeyType byte

const (
	voteTPrefix metadataKeyType = iota + 1
	seqTPrefix
)

// PebbleVoteLog persists every cast vote, keyed by proposal and a global
// append sequence so history iterates in cast order.
type PebbleVoteLog struct {
	db *pebble.DB

	mu  sync.Mutex
	seq uint64
}

func NewPebbleVoteLog(path string) (*PebbleVoteLog, error) {
	c := pebble.NewCache(cacheSize)
	tc := pebble.NewTableCache(c, 16, 100)
	defer tc.Unref()
	defer c.Unref()

	return openPebbleVoteLog(path, &pebble.Options{Cache: c, TableCache: tc})
}

func openPebbleVoteLog(path string, opts *pebble.Options) (*PebbleVoteLog, error) {
	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, errors.Wrap(err, "opening vote log")
	}

	l := &PebbleVoteLog{db: db}

	d, done, err := db.Get(typedKey(seqTPrefix))
	switch err {
	case nil:
		l.seq = binary.BigEndian.Uint64(d)
		done.Close()
	case pebble.ErrNotFound:
	default:
		db.Close()
		return nil, errors.Wrap(err, "reading vote log sequence")
	}

	logging.Component("votelog").WithField("path", path).WithField("seq", l.seq).Debug("opened vote log")

	return l, nil
}

func (l *PebbleVoteLog) Append(ctx context.Context, v *governance.Vote) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b, err := msgpack.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encoding vote")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	seq := l.seq + 1

	batch := l.db.NewBatch()
	defer batch.Close()

	if err := batch.Set(voteKey(v.Proposal, seq), b, nil); err != nil {
		return errors.Wrap(err, "staging vote")
	}
	if err := batch.Set(typedKey(seqTPrefix), seqBytes(seq), nil); err != nil {
		return errors.Wrap(err, "staging sequence")
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return errors.Wrap(err, "committing vote")
	}

	l.seq = seq

	return nil
}

func (l *PebbleVoteLog) History(ctx context.Context, proposal cid.Cid) ([]*governance.Vote, error) {
	prefix := typedKey(voteTPrefix, proposal.Bytes())

	iter := l.db.NewIter(&pebble.IterOptions{
		LowerBound: append(append([]byte{}, prefix...), tableSep),
		UpperBound: append(append([]byte{}, prefix...), tableSepUpperBound),
	})
	defer iter.Close()

	votes := []*governance.Vote{}

	for iter.First(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		v := &governance.Vote{}
		if err := msgpack.Unmarshal(iter.Value(), v); err != nil {
			return nil, errors.Wrap(err, "decoding vote")
		}

		votes = append(votes, v)
	}

	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "iterating votes")
	}

	return votes, nil
}

func (l *PebbleVoteLog) Close() error {
	return l.db.Close()
}

func voteKey(proposal cid.Cid, seq uint64) []byte {
	return typedKey(voteTPrefix, proposal.Bytes(), seqBytes(seq))
}

func seqBytes(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

func typedKey(kType metadataKeyType, parts ...[]byte) []byte {
	n := 1
	for _, p := range parts {
		n += len(p) + 1
	}

	k := make([]byte, 0, n)
	k = append(k, byte(kType))
	for i, p := range parts {
		if i > 0 {
			k = append(k, tableSep)
		}
		k = append(k, p...)
	}

	return k
}
