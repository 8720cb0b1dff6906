package identity

import (
	"context"
	"sync"

	"github.com/drand/kyber"
	bls "github.com/drand/kyber-bls12381"
	sig "github.com/drand/kyber/sign/bls"
	"github.com/multiformats/go-multibase"
	"github.com/pkg/errors"
)

var (
	_ Provider = (*Bls12381Provider)(nil)

	pairing = bls.NewBLS12381Suite()
)

// Bls12381Provider signs on G2 with public keys on G1. Identities are the
// multibase (base58btc) encoding of the public key, so verification needs
// no local state.
type Bls12381Provider struct {
	seed []byte

	mu   sync.RWMutex
	keys map[ID]kyber.Scalar
}

func NewBls12381Provider(seed []byte) (*Bls12381Provider, error) {
	if err := checkSeed(seed); err != nil {
		return nil, err
	}

	return &Bls12381Provider{
		seed: append([]byte(nil), seed...),
		keys: make(map[ID]kyber.Scalar),
	}, nil
}

func (p *Bls12381Provider) Derive(ctx context.Context, row, col, instance int) (ID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	b, err := deriveKey(p.seed, Path(row, col, instance), 48)
	if err != nil {
		return "", err
	}

	sk := pairing.G1().Scalar().SetBytes(b)
	pk := pairing.G1().Point().Mul(sk, nil)

	pkb, err := pk.MarshalBinary()
	if err != nil {
		return "", errors.Wrap(err, "marshalling public key")
	}

	mb, err := multibase.Encode(multibase.Base58BTC, pkb)
	if err != nil {
		return "", errors.Wrap(err, "encoding public key")
	}

	id := ID(mb)

	p.mu.Lock()
	p.keys[id] = sk
	p.mu.Unlock()

	return id, nil
}

func (p *Bls12381Provider) Sign(ctx context.Context, id ID, payload []byte) (Signature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	sk, ok := p.keys[id]
	p.mu.RUnlock()

	if !ok {
		return nil, errors.Wrapf(ErrUnknownIdentity, "%s", id)
	}

	s, err := sig.NewSchemeOnG2(pairing).Sign(sk, payload)
	if err != nil {
		return nil, errors.Wrap(err, "signing payload")
	}

	return s, nil
}

func (p *Bls12381Provider) Verify(payload []byte, s Signature, id ID) bool {
	_, pkb, err := multibase.Decode(string(id))
	if err != nil {
		return false
	}

	pk := pairing.G1().Point()
	if err := pk.UnmarshalBinary(pkb); err != nil {
		return false
	}

	return sig.NewSchemeOnG2(pairing).Verify(pk, payload, s) == nil
}
