package embedded

import (
	"github.com/multiversx/mx-launchpad-sc-sub000/common"
	"github.com/multiversx/mx-launchpad-sc-sub000/common/math"
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/operation"
	"github.com/pkg/errors"
)

var errTicketsFiltered = errors.New("tickets already filtered")

// filterTickets drops the batches of blacklisted and non-confirming users and shifts the remaining
// batches down so that ticket ids stay contiguous.
func (l *Launchpad) filterTickets() ([]byte, error) {
	if err := l.requireStage(WinnerSelectionStage); err != nil {
		return nil, err
	}
	flags := l.flags()
	if flags.TicketsFiltered {
		return nil, errTicketsFiltered
	}
	if !l.launchpadTokensDeposited() {
		return nil, errTokensNotDeposited
	}
	op, err := l.operations.LoadFilterTickets(func() *operation.FilterTickets {
		return &operation.FilterTickets{FirstTicketId: 1}
	})
	if err != nil {
		return nil, err
	}
	if !flags.WinnerSelectionStarted {
		flags.WinnerSelectionStarted = true
		l.setFlags(flags)
	}

	lastTicketId := l.GetUint64("lastTicketId")
	var stepErr error
	status := l.operations.RunWhileItHasGas(func() operation.LoopOp {
		if op.FirstTicketId > lastTicketId {
			return operation.Stop
		}
		if stepErr = l.filterBatch(op); stepErr != nil {
			return operation.Stop
		}
		return operation.Continue
	})
	if stepErr != nil {
		return nil, stepErr
	}

	if status == operation.Interrupted {
		if err := l.operations.Save(op); err != nil {
			return nil, err
		}
		return statusOutput(status), nil
	}

	lastTicketId -= op.NrRemoved
	l.SetUint64("lastTicketId", lastTicketId)
	l.SetUint64("nrWinningTickets", math.Min(l.nrWinningTickets(), lastTicketId))
	flags.TicketsFiltered = true
	l.setFlags(flags)
	return statusOutput(status), nil
}

func (l *Launchpad) filterBatch(op *operation.FilterTickets) error {
	cursor := op.FirstTicketId
	batch, ok := l.ticketBatch(cursor)
	if !ok {
		return errors.Errorf("missing ticket batch %v", cursor)
	}
	allotted := batch.TicketCount
	confirmed := l.nrConfirmed(batch.Address)

	if confirmed == 0 || l.isBlacklisted(batch.Address) {
		l.ticketBatches.Remove(common.ToBytes(cursor))
		l.ticketRanges.Remove(batch.Address.Bytes())
		op.NrRemoved += allotted
	} else if op.NrRemoved > 0 || confirmed < allotted {
		l.ticketBatches.Remove(common.ToBytes(cursor))
		newFirst := cursor - op.NrRemoved
		batch.TicketCount = confirmed
		l.setTicketBatch(newFirst, batch)
		l.setTicketRange(batch.Address, TicketRange{FirstId: newFirst, LastId: newFirst + confirmed - 1})
		op.NrRemoved += allotted - confirmed
	}
	op.FirstTicketId = cursor + allotted
	return nil
}
