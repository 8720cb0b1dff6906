package governance

import (
	"github.com/pkg/errors"
	"github.com/tcfw/govern/pkg/triangle"
)

var (
	ErrInvalidPopulationSize = triangle.ErrInvalidPopulationSize
	ErrUnknownParticipant    = errors.New("unknown participant")
	ErrUnknownProposal       = errors.New("unknown proposal")
	ErrIdentityDerivation    = errors.New("identity derivation failed")
	ErrSignature             = errors.New("signing vote failed")
	ErrInvalidThreshold      = errors.New("threshold must be within (0, 1]")
	ErrDuplicateParticipant  = errors.New("participant already registered")
	ErrInvalidConfig         = errors.New("invalid ledger config")
	ErrNoVoteLog             = errors.New("no vote log configured")
)
