package embedded

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/multiversx/mx-launchpad-sc-sub000/common/math"
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/operation"
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/random"
	"github.com/pkg/errors"
)

var (
	errWinnersNotSelected = errors.New("winners must be selected first")
	errAdditionalStepDone = errors.New("guaranteed tickets already distributed")
)

const (
	settleUsersPhase uint8 = iota
	countWinningPhase
	flipTicketsPhase
	distributeLeftoverPhase
)

// guaranteedSelection is the continuation of distributeGuaranteedTickets. Every step touches at most
// one ticket, so the range fields track the user being settled.
type guaranteedSelection struct {
	Phase             uint8
	UserIndex         uint64
	RangeFirstId      uint64
	RangeLastId       uint64
	TicketCursor      uint64
	Remaining         uint64
	LeftoverTickets   uint64
	AdditionalWinners uint64
	LeftoverCursor    uint64
	Rng               random.Random
}

// SettleGuarantees sums the tiers whose threshold is met and clamps the sum to the confirmed count.
// Leftover is the clamped excess, forfeited is the sum of the tiers that were not met.
func SettleGuarantees(tiers []GuaranteedTicketInfo, confirmed uint64) (guaranteed, leftover, forfeited uint64) {
	var met uint64
	for _, tier := range tiers {
		if confirmed >= tier.MinConfirmedTickets {
			met += tier.GuaranteedTickets
		} else {
			forfeited += tier.GuaranteedTickets
		}
	}
	guaranteed = math.Min(met, confirmed)
	return guaranteed, met - guaranteed, forfeited
}

// distributeGuaranteedTickets first grants every guaranteed user their entitlement inside their own
// range, then draws the slots nobody could use among the remaining tickets.
func (l *Launchpad) distributeGuaranteedTickets() ([]byte, error) {
	if err := l.requireStage(WinnerSelectionStage); err != nil {
		return nil, err
	}
	flags := l.flags()
	if !flags.WinnersSelected {
		return nil, errWinnersNotSelected
	}
	if flags.AdditionalStepCompleted {
		return nil, errAdditionalStepDone
	}
	baseWinners := l.GetUint64("baseWinningTickets")
	op, err := l.operations.LoadAdditionalSelection(func() *operation.AdditionalSelection {
		rng := random.New(l.env.BlockSeed(), l.env.Hash)
		return &operation.AdditionalSelection{EncodedData: encodeGuaranteedSelection(&guaranteedSelection{
			Phase:          settleUsersPhase,
			LeftoverCursor: baseWinners + 1,
			Rng:            *rng,
		})}
	})
	if err != nil {
		return nil, err
	}
	state := new(guaranteedSelection)
	if err := rlp.DecodeBytes(op.EncodedData, state); err != nil {
		return nil, errors.Wrap(err, "failed to decode guaranteed selection")
	}
	state.Rng.WithHasher(l.env.Hash)

	lastTicketId := l.GetUint64("lastTicketId")
	usersCount := l.guaranteedUsersCount()

	status := l.operations.RunWhileItHasGas(func() operation.LoopOp {
		switch state.Phase {
		case settleUsersPhase:
			if state.UserIndex >= usersCount {
				state.Phase = distributeLeftoverPhase
				return operation.Continue
			}
			l.settleGuaranteedUser(state)
		case countWinningPhase:
			l.countUserWinning(state)
		case flipTicketsPhase:
			l.flipUserTicket(state)
		default:
			return l.distributeLeftover(state, baseWinners, lastTicketId)
		}
		return operation.Continue
	})

	if status == operation.Interrupted {
		op.EncodedData = encodeGuaranteedSelection(state)
		if err := l.operations.Save(op); err != nil {
			return nil, err
		}
		return statusOutput(status), nil
	}

	l.SetUint64("winningTicketCount", l.GetUint64("winningTicketCount")+state.AdditionalWinners)
	l.addClaimableTicketPayment(l.ticketPayment(state.AdditionalWinners))
	flags.AdditionalStepCompleted = true
	l.setFlags(flags)
	return statusOutput(status), nil
}

func encodeGuaranteedSelection(state *guaranteedSelection) []byte {
	data, err := rlp.EncodeToBytes(state)
	if err != nil {
		panic(err)
	}
	return data
}

// settleGuaranteedUser computes the entitlement of the next guaranteed user and starts the scan of
// their range when there is anything to grant.
func (l *Launchpad) settleGuaranteedUser(state *guaranteedSelection) {
	user := l.guaranteedUser(state.UserIndex)
	state.UserIndex++

	confirmed := l.nrConfirmed(user.Address)
	guaranteed, leftover, forfeited := SettleGuarantees(user.Tiers, confirmed)
	state.LeftoverTickets += leftover + forfeited

	r, ok := l.ticketRange(user.Address)
	fullyConfirmed := confirmed == user.AllottedTickets
	if !ok || guaranteed == 0 || (l.params.RequireFullConfirmation && !fullyConfirmed) {
		state.LeftoverTickets += guaranteed
		return
	}
	state.RangeFirstId = r.FirstId
	state.RangeLastId = r.LastId
	state.TicketCursor = r.FirstId
	state.Remaining = guaranteed
	state.Phase = countWinningPhase
}

// countUserWinning deducts the tickets the user already won from the entitlement, one ticket per step.
func (l *Launchpad) countUserWinning(state *guaranteedSelection) {
	if state.Remaining == 0 {
		state.Phase = settleUsersPhase
		return
	}
	if state.TicketCursor > state.RangeLastId {
		state.TicketCursor = state.RangeFirstId
		state.Phase = flipTicketsPhase
		return
	}
	if l.isWinning(state.TicketCursor) {
		state.Remaining--
	}
	state.TicketCursor++
}

// flipUserTicket grants the rest of the entitlement inside the user's range. Whatever the range
// cannot absorb goes to the leftover pool.
func (l *Launchpad) flipUserTicket(state *guaranteedSelection) {
	if state.Remaining == 0 {
		state.Phase = settleUsersPhase
		return
	}
	if state.TicketCursor > state.RangeLastId {
		state.LeftoverTickets += state.Remaining
		state.Remaining = 0
		state.Phase = settleUsersPhase
		return
	}
	if !l.isWinning(state.TicketCursor) {
		l.markWinning(state.TicketCursor)
		state.AdditionalWinners++
		state.Remaining--
	}
	state.TicketCursor++
}

func (l *Launchpad) distributeLeftover(state *guaranteedSelection, baseWinners, lastTicketId uint64) operation.LoopOp {
	if state.LeftoverTickets == 0 || state.LeftoverCursor > lastTicketId {
		return operation.Stop
	}
	if baseWinners+state.AdditionalWinners >= lastTicketId {
		state.LeftoverTickets = 0
		return operation.Stop
	}
	pos := state.LeftoverCursor
	current := l.ticketIdAt(pos)
	if l.isWinning(current) {
		state.LeftoverCursor++
		return operation.Continue
	}
	drawn := state.Rng.NextInRange(pos, lastTicketId+1)
	drawnId := l.ticketIdAt(drawn)
	if !l.isWinning(drawnId) {
		l.markWinning(drawnId)
		state.LeftoverTickets--
		state.AdditionalWinners++
		if drawn != pos {
			l.setTicketIdAt(drawn, current)
		}
	}
	state.LeftoverCursor++
	return operation.Continue
}
