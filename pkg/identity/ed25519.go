package identity

import (
	"context"
	"crypto/ed25519"
	"sync"

	"github.com/multiformats/go-multihash"
	"github.com/pkg/errors"
)

var _ Provider = (*Ed25519Provider)(nil)

type Ed25519Provider struct {
	seed []byte

	mu   sync.RWMutex
	keys map[ID]ed25519.PrivateKey
}

func NewEd25519Provider(seed []byte) (*Ed25519Provider, error) {
	if err := checkSeed(seed); err != nil {
		return nil, err
	}

	return &Ed25519Provider{
		seed: append([]byte(nil), seed...),
		keys: make(map[ID]ed25519.PrivateKey),
	}, nil
}

func (p *Ed25519Provider) Derive(ctx context.Context, row, col, instance int) (ID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	b, err := deriveKey(p.seed, Path(row, col, instance), ed25519.SeedSize)
	if err != nil {
		return "", err
	}

	sk := ed25519.NewKeyFromSeed(b)

	id, err := ed25519ID(sk.Public().(ed25519.PublicKey))
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	p.keys[id] = sk
	p.mu.Unlock()

	return id, nil
}

func (p *Ed25519Provider) Sign(ctx context.Context, id ID, payload []byte) (Signature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	sk, ok := p.keys[id]
	p.mu.RUnlock()

	if !ok {
		return nil, errors.Wrapf(ErrUnknownIdentity, "%s", id)
	}

	return ed25519.Sign(sk, payload), nil
}

func (p *Ed25519Provider) Verify(payload []byte, sig Signature, id ID) bool {
	p.mu.RLock()
	sk, ok := p.keys[id]
	p.mu.RUnlock()

	if !ok {
		return false
	}

	return ed25519.Verify(sk.Public().(ed25519.PublicKey), payload, sig)
}

// ed25519ID is the base58 SHA3-384 multihash of the public key
func ed25519ID(pk ed25519.PublicKey) (ID, error) {
	mh, err := multihash.Sum(pk, multihash.SHA3_384, multihash.DefaultLengths[multihash.SHA3_384])
	if err != nil {
		return "", errors.Wrap(err, "hashing public key")
	}

	return ID(mh.B58String()), nil
}
