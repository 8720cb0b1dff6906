package identity

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"sync"

	ethCrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

const maxSecp256k1Attempts = 16

var _ Provider = (*Secp256k1Provider)(nil)

// Secp256k1Provider derives ethereum style accounts; identities are the
// checksummed account address.
type Secp256k1Provider struct {
	seed []byte

	mu   sync.RWMutex
	keys map[ID]*ecdsa.PrivateKey
}

func NewSecp256k1Provider(seed []byte) (*Secp256k1Provider, error) {
	if err := checkSeed(seed); err != nil {
		return nil, err
	}

	return &Secp256k1Provider{
		seed: append([]byte(nil), seed...),
		keys: make(map[ID]*ecdsa.PrivateKey),
	}, nil
}

func (p *Secp256k1Provider) Derive(ctx context.Context, row, col, instance int) (ID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := Path(row, col, instance)

	var sk *ecdsa.PrivateKey
	for i := 0; sk == nil; i++ {
		if i == maxSecp256k1Attempts {
			return "", errors.Errorf("no valid secp256k1 scalar for %s", path)
		}

		b, err := deriveKey(p.seed, fmt.Sprintf("%s#%d", path, i), 32)
		if err != nil {
			return "", err
		}

		// out of range scalars are rejected, try the next counter
		sk, _ = ethCrypto.ToECDSA(b)
	}

	id := ID(ethCrypto.PubkeyToAddress(sk.PublicKey).Hex())

	p.mu.Lock()
	p.keys[id] = sk
	p.mu.Unlock()

	return id, nil
}

func (p *Secp256k1Provider) Sign(ctx context.Context, id ID, payload []byte) (Signature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	sk, ok := p.keys[id]
	p.mu.RUnlock()

	if !ok {
		return nil, errors.Wrapf(ErrUnknownIdentity, "%s", id)
	}

	sig, err := ethCrypto.Sign(ethCrypto.Keccak256(payload), sk)
	if err != nil {
		return nil, errors.Wrap(err, "signing payload")
	}

	return sig, nil
}

// Verify recovers the signer from the signature, so it works for any
// address and not just the ones derived here.
func (p *Secp256k1Provider) Verify(payload []byte, sig Signature, id ID) bool {
	pub, err := ethCrypto.SigToPub(ethCrypto.Keccak256(payload), sig)
	if err != nil {
		return false
	}

	return ethCrypto.PubkeyToAddress(*pub).Hex() == string(id)
}
