package identity

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrUnknownIdentity = errors.New("identity not derived by this provider")
	ErrInvalidSeed     = errors.New("master seed too short")
	ErrUnknownScheme   = errors.New("unknown identity scheme")
)

type ID string

type Signature []byte

// Provider derives stable identities for triangle cells and signs on their
// behalf. Derive and Sign may perform I/O; callers bound them with ctx.
type Provider interface {
	Derive(ctx context.Context, row, col, instance int) (ID, error)
	Sign(ctx context.Context, id ID, payload []byte) (Signature, error)
	Verify(payload []byte, sig Signature, id ID) bool
}

const (
	SchemeEd25519   = "ed25519"
	SchemeSecp256k1 = "secp256k1"
	SchemeBls12381  = "bls12381"
)

// NewProvider constructs a provider for a named scheme
func NewProvider(scheme string, seed []byte) (Provider, error) {
	switch scheme {
	case SchemeEd25519:
		return NewEd25519Provider(seed)
	case SchemeSecp256k1:
		return NewSecp256k1Provider(seed)
	case SchemeBls12381:
		return NewBls12381Provider(seed)
	default:
		return nil, errors.Wrapf(ErrUnknownScheme, "%q", scheme)
	}
}
