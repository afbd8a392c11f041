package embedded

import (
	"github.com/multiversx/mx-launchpad-sc-sub000/common/math"
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/operation"
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/random"
	"github.com/pkg/errors"
)

var (
	errTicketsNotFiltered = errors.New("tickets must be filtered first")
	errWinnersSelected    = errors.New("winners already selected")
)

// selectWinners draws the base winners with a partial Fisher-Yates shuffle over ticket positions.
// Positions past the cursor hold the tickets not drawn yet, so a swap only rewrites the drawn position.
func (l *Launchpad) selectWinners() ([]byte, error) {
	if err := l.requireStage(WinnerSelectionStage); err != nil {
		return nil, err
	}
	flags := l.flags()
	if !flags.TicketsFiltered {
		return nil, errTicketsNotFiltered
	}
	if flags.WinnersSelected {
		return nil, errWinnersSelected
	}
	op, err := l.operations.LoadSelectWinners(func() *operation.SelectWinners {
		return &operation.SelectWinners{Rng: *random.New(l.env.BlockSeed(), l.env.Hash), TicketPosition: 1}
	})
	if err != nil {
		return nil, err
	}
	op.Rng.WithHasher(l.env.Hash)

	lastTicketId := l.GetUint64("lastTicketId")
	winners := math.SafeSub(l.nrWinningTickets(), l.GetUint64("totalGuaranteedTickets"))

	status := l.operations.RunWhileItHasGas(func() operation.LoopOp {
		if op.TicketPosition > winners {
			return operation.Stop
		}
		pos := op.TicketPosition
		drawn := op.Rng.NextInRange(pos, lastTicketId+1)
		l.markWinning(l.ticketIdAt(drawn))
		if drawn != pos {
			l.setTicketIdAt(drawn, l.ticketIdAt(pos))
		}
		op.TicketPosition++
		return operation.Continue
	})

	if status == operation.Interrupted {
		if err := l.operations.Save(op); err != nil {
			return nil, err
		}
		return statusOutput(status), nil
	}

	l.SetUint64("baseWinningTickets", winners)
	l.SetUint64("winningTicketCount", winners)
	l.addClaimableTicketPayment(l.ticketPayment(winners))
	flags.WinnersSelected = true
	if l.guaranteedUsersCount() == 0 {
		flags.AdditionalStepCompleted = true
	}
	l.setFlags(flags)
	return statusOutput(status), nil
}
