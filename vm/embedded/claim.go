package embedded

import (
	"math/big"

	"github.com/multiversx/mx-launchpad-sc-sub000/common"
	"github.com/multiversx/mx-launchpad-sc-sub000/common/math"
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/helpers"
	"github.com/multiversx/mx-launchpad-sc-sub000/vm/vesting"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	errNothingToClaim      = errors.New("nothing to claim")
	errAlreadyClaimedOwner = errors.New("ticket payment already claimed")
)

func (l *Launchpad) unlockSchedule() vesting.Schedule {
	var schedule vesting.Schedule
	found, err := l.GetRlp("unlockSchedule", &schedule)
	if err != nil {
		panic(err)
	}
	if !found {
		return vesting.Schedule{{Time: l.params.ClaimStart, Percentage: vesting.MaxPercentage}}
	}
	return schedule
}

func (l *Launchpad) setUnlockSchedule(args ...[]byte) error {
	if err := l.requireOwner(); err != nil {
		return err
	}
	if l.stage() == ClaimStage {
		return errors.New("unlock schedule cannot be changed in claim period")
	}
	var schedule vesting.Schedule
	if err := helpers.ExtractRlp(0, &schedule, args...); err != nil {
		return err
	}
	if err := vesting.ValidateSchedule(schedule, l.env.BlockNumber()); err != nil {
		return err
	}
	l.SetRlp("unlockSchedule", schedule)
	return nil
}

func (l *Launchpad) unlockedPercent() decimal.Decimal {
	return vesting.UnlockedPercent(l.unlockSchedule(), l.env.BlockNumber())
}

func (l *Launchpad) countWinning(r TicketRange) uint64 {
	var winning uint64
	for id := r.FirstId; id <= r.LastId; id++ {
		if l.isWinning(id) {
			winning++
		}
	}
	return winning
}

// settleUser turns the user's tickets into a launchpad token balance and refunds the tickets that did
// not win. It reports false when the user has no tickets left to settle.
func (l *Launchpad) settleUser(addr common.Address) (bool, error) {
	r, ok := l.ticketRange(addr)
	if !ok {
		return false, nil
	}
	var winning uint64
	for id := r.FirstId; id <= r.LastId; id++ {
		if l.isWinning(id) {
			winning++
			l.winningTickets.Remove(common.ToBytes(id))
		}
		if l.ticketPositions.Has(common.ToBytes(id)) {
			l.ticketPositions.Remove(common.ToBytes(id))
		}
	}
	confirmed := l.nrConfirmed(addr)
	if refund := math.SafeSub(confirmed, winning); refund > 0 {
		if err := l.env.Send(l.ctx, addr, l.params.TicketToken, l.ticketPayment(refund)); err != nil {
			return false, err
		}
	}
	if winning > 0 {
		l.userClaimable.Set(addr.Bytes(), l.launchpadTokens(winning).Bytes())
	}
	l.ticketBatches.Remove(common.ToBytes(r.FirstId))
	l.ticketRanges.Remove(addr.Bytes())
	l.confirmedTickets.Remove(addr.Bytes())
	return true, nil
}

func (l *Launchpad) claimableBalance(addr common.Address) (total, claimed *big.Int) {
	total = new(big.Int).SetBytes(l.userClaimable.Get(addr.Bytes()))
	claimed = new(big.Int).SetBytes(l.userClaimed.Get(addr.Bytes()))
	return total, claimed
}

func (l *Launchpad) claimLaunchpadTokens() ([]byte, error) {
	if err := l.requireStage(ClaimStage); err != nil {
		return nil, err
	}
	sender := l.ctx.Sender()
	settled, err := l.settleUser(sender)
	if err != nil {
		return nil, err
	}
	total, claimed := l.claimableBalance(sender)
	if total.Sign() == 0 {
		if settled {
			return new(big.Int).Bytes(), nil
		}
		return nil, errNothingToClaim
	}
	amount, err := vesting.Claimable(total, claimed, l.unlockSchedule(), l.env.BlockNumber())
	if err != nil {
		return nil, err
	}
	if amount.Sign() == 0 {
		if settled {
			return amount.Bytes(), nil
		}
		return nil, errNothingToClaim
	}
	if err := l.env.Send(l.ctx, sender, l.params.LaunchpadToken, amount); err != nil {
		return nil, err
	}
	l.userClaimed.Set(sender.Bytes(), claimed.Add(claimed, amount).Bytes())
	return amount.Bytes(), nil
}

// computeClaimableTokens also covers users who have not claimed yet, counting their winning tickets.
func (l *Launchpad) computeClaimableTokens(addr common.Address) (*big.Int, error) {
	if l.stage() != ClaimStage {
		return new(big.Int), nil
	}
	total, claimed := l.claimableBalance(addr)
	if r, ok := l.ticketRange(addr); ok {
		total = l.launchpadTokens(l.countWinning(r))
	}
	if total.Sign() == 0 {
		return new(big.Int), nil
	}
	return vesting.Claimable(total, claimed, l.unlockSchedule(), l.env.BlockNumber())
}

func (l *Launchpad) readWinningTickets(addr common.Address) ([]byte, error) {
	r, ok := l.ticketRange(addr)
	if !ok {
		return nil, errNoTickets
	}
	bitmap := common.NewBitmap(uint32(r.Len()))
	for id := r.FirstId; id <= r.LastId; id++ {
		if l.isWinning(id) {
			bitmap.Add(uint32(id - r.FirstId))
		}
	}
	return bitmap.Bytes(), nil
}

// claimTicketPayment pays the owner for the winning tickets and returns the launchpad tokens
// nobody won.
func (l *Launchpad) claimTicketPayment() error {
	if err := l.requireOwner(); err != nil {
		return err
	}
	if err := l.requireStage(ClaimStage); err != nil {
		return err
	}
	if l.GetByte("ownerPaymentClaimed") == 1 {
		return errAlreadyClaimedOwner
	}
	owner := l.ctx.Sender()
	if payment := l.GetBigInt("claimableTicketPayment"); payment != nil && payment.Sign() > 0 {
		if err := l.env.Send(l.ctx, owner, l.params.TicketToken, payment); err != nil {
			return err
		}
	}
	distributed := l.launchpadTokens(l.GetUint64("winningTicketCount"))
	if rest := new(big.Int).Sub(l.depositedLaunchpadTokens(), distributed); rest.Sign() > 0 {
		if err := l.env.Send(l.ctx, owner, l.params.LaunchpadToken, rest); err != nil {
			return err
		}
	}
	l.SetByte("ownerPaymentClaimed", 1)
	return nil
}
