package governance

import (
	"time"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/pkg/errors"
	"github.com/tcfw/govern/pkg/identity"
	"github.com/vmihailenco/msgpack/v5"
)

type proposalContent struct {
	Proposer  identity.ID `msgpack:"p"`
	Payload   []byte      `msgpack:"d"`
	CreatedAt int64       `msgpack:"t"`
}

type voteContent struct {
	Participant identity.ID `msgpack:"p"`
	Proposal    []byte      `msgpack:"pr"`
	Value       bool        `msgpack:"v"`
	Timestamp   int64       `msgpack:"t"`
}

// ProposalID is the content address of (proposer, payload, createdAt)
func ProposalID(proposer identity.ID, payload []byte, createdAt time.Time) (cid.Cid, error) {
	b, err := msgpack.Marshal(&proposalContent{
		Proposer:  proposer,
		Payload:   payload,
		CreatedAt: createdAt.UnixNano(),
	})
	if err != nil {
		return cid.Undef, errors.Wrap(err, "encoding proposal")
	}

	h, err := multihash.Sum(b, multihash.SHA3_256, -1)
	if err != nil {
		return cid.Undef, errors.Wrap(err, "hashing proposal")
	}

	return cid.NewCidV1(cid.Raw, h), nil
}

// VotePayload is the byte string a participant signs when voting
func VotePayload(participant identity.ID, proposal cid.Cid, value bool, ts time.Time) ([]byte, error) {
	b, err := msgpack.Marshal(&voteContent{
		Participant: participant,
		Proposal:    proposal.Bytes(),
		Value:       value,
		Timestamp:   ts.UnixNano(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "encoding vote")
	}

	return b, nil
}
