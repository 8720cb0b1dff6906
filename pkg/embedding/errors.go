package embedding

import "github.com/pkg/errors"

var (
	ErrUnknownKind   = errors.New("unknown layout kind")
	ErrInvalidIndex  = errors.New("layout index must not be negative")
	ErrInvalidConfig = errors.New("invalid layout config")
	ErrUnknownAnchor = errors.New("unknown anchor set")
)
