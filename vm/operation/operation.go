package operation

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/random"
	"github.com/pkg/errors"
)

var (
	ErrAnotherOperation = errors.New("another ongoing operation is in progress")
	ErrUnknownOperation = errors.New("unknown ongoing operation")
)

type Kind byte

const (
	KindNone Kind = iota
	KindFilterTickets
	KindSelectWinners
	KindAdditionalSelection
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindFilterTickets:
		return "filterTickets"
	case KindSelectWinners:
		return "selectWinners"
	case KindAdditionalSelection:
		return "additionalSelection"
	default:
		return "unknown"
	}
}

// Operation is the continuation of one suspended long-running algorithm. The set of variants is
// closed: FilterTickets, SelectWinners and AdditionalSelection.
type Operation interface {
	Kind() Kind
	isOperation()
}

type FilterTickets struct {
	FirstTicketId uint64
	NrRemoved     uint64
}

type SelectWinners struct {
	Rng            random.Random
	TicketPosition uint64
}

// AdditionalSelection carries the state of a caller-specific step as an opaque payload.
type AdditionalSelection struct {
	EncodedData []byte
}

func (*FilterTickets) Kind() Kind       { return KindFilterTickets }
func (*SelectWinners) Kind() Kind       { return KindSelectWinners }
func (*AdditionalSelection) Kind() Kind { return KindAdditionalSelection }

func (*FilterTickets) isOperation()       {}
func (*SelectWinners) isOperation()       {}
func (*AdditionalSelection) isOperation() {}

// Encode stores the variant tag in the first byte followed by the RLP of the variant.
func Encode(op Operation) ([]byte, error) {
	payload, err := rlp.EncodeToBytes(op)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to encode %v operation", op.Kind())
	}
	return append([]byte{byte(op.Kind())}, payload...), nil
}

func Decode(data []byte) (Operation, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var op Operation
	switch Kind(data[0]) {
	case KindFilterTickets:
		op = new(FilterTickets)
	case KindSelectWinners:
		op = new(SelectWinners)
	case KindAdditionalSelection:
		op = new(AdditionalSelection)
	default:
		return nil, ErrUnknownOperation
	}
	if err := rlp.DecodeBytes(data[1:], op); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %v operation", op.Kind())
	}
	return op, nil
}
