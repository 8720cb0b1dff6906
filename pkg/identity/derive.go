package identity

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/sha3"
)

// MinSeedLength is the shortest master seed providers accept
const MinSeedLength = 16

// Path is the derivation path of a cell instance
func Path(row, col, instance int) string {
	return fmt.Sprintf("m/777/%d/%d/%d", row, col, instance)
}

// deriveKey expands n bytes of key material for path from the master seed
func deriveKey(seed []byte, path string, n int) ([]byte, error) {
	r := hkdf.New(sha3.New256, seed, nil, []byte(path))

	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, errors.Wrap(err, "expanding key material")
	}

	return b, nil
}

func checkSeed(seed []byte) error {
	if len(seed) < MinSeedLength {
		return errors.Wrapf(ErrInvalidSeed, "got %d bytes, need %d", len(seed), MinSeedLength)
	}

	return nil
}
