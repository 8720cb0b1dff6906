package governance

import (
	"time"

	"github.com/ipfs/go-cid"
	"github.com/tcfw/govern/pkg/embedding"
	"github.com/tcfw/govern/pkg/identity"
)

// Participant is a single instance of a triangle cell. Participants are
// immutable once registered.
type Participant struct {
	ID       identity.ID `msgpack:"id" yaml:"id"`
	Row      int         `msgpack:"r" yaml:"row"`
	Col      int         `msgpack:"c" yaml:"col"`
	Instance int         `msgpack:"i" yaml:"instance"`

	// Value is the combinatorial value of the cell
	Value    uint64             `msgpack:"v" yaml:"value"`
	Position embedding.Position `msgpack:"p" yaml:"position"`

	VotingPower float64 `msgpack:"w" yaml:"votingPower"`
	Influence   float64 `msgpack:"f" yaml:"influence"`
}

type Proposal struct {
	ID        cid.Cid     `msgpack:"id" yaml:"-"`
	Proposer  identity.ID `msgpack:"p" yaml:"proposer"`
	Payload   []byte      `msgpack:"d" yaml:"-"`
	CreatedAt time.Time   `msgpack:"t" yaml:"createdAt"`
	Threshold float64     `msgpack:"th" yaml:"threshold"`
}

// Vote is the live vote of a participant on a proposal. Weight already has
// time decay and proximity applied.
type Vote struct {
	Participant identity.ID        `msgpack:"p" yaml:"participant"`
	Proposal    cid.Cid            `msgpack:"pr" yaml:"-"`
	Value       bool               `msgpack:"v" yaml:"value"`
	Weight      float64            `msgpack:"w" yaml:"weight"`
	Decay       float64            `msgpack:"dc" yaml:"decay"`
	Proximity   float64            `msgpack:"px" yaml:"proximity"`
	Timestamp   time.Time          `msgpack:"t" yaml:"timestamp"`
	Signature   identity.Signature `msgpack:"s" yaml:"-"`
}

func (p *Participant) less(o *Participant) bool {
	if p.Row != o.Row {
		return p.Row < o.Row
	}
	if p.Col != o.Col {
		return p.Col < o.Col
	}
	if p.Instance != o.Instance {
		return p.Instance < o.Instance
	}

	return p.ID < o.ID
}
