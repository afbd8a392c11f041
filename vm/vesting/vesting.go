// Package vesting computes how much of a locked launchpad balance is unlocked at a given time.
package vesting

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// MaxPercentage is 100.00% in basis points.
const MaxPercentage = 10_000

var (
	ErrEmptySchedule      = errors.New("unlock schedule is empty")
	ErrInvalidPercentage  = errors.New("invalid unlock percentage")
	ErrInvalidTotal       = errors.New("unlock percentages must add up to 100%")
	ErrAlreadyClaimedAll  = errors.New("already claimed all")
	ErrNoClaimableBalance = errors.New("no claimable balance")
)

type UnlockMilestone struct {
	Time       uint64
	Percentage uint64
}

type Schedule []UnlockMilestone

// ValidateSchedule checks a schedule being set at time now.
func ValidateSchedule(schedule Schedule, now uint64) error {
	if len(schedule) == 0 {
		return ErrEmptySchedule
	}
	var total, previous uint64
	for i, m := range schedule {
		if m.Time < now {
			return errors.Errorf("unlock milestone %v is in the past", i)
		}
		if m.Time < previous {
			return errors.Errorf("unlock milestone %v is before the previous one", i)
		}
		if m.Percentage > MaxPercentage {
			return ErrInvalidPercentage
		}
		previous = m.Time
		total += m.Percentage
	}
	if total != MaxPercentage {
		return ErrInvalidTotal
	}
	return nil
}

// UnlockedBasisPoints sums the milestones reached at now. The schedule is sorted by time, so the scan
// stops at the first future milestone.
func UnlockedBasisPoints(schedule Schedule, now uint64) uint64 {
	var total uint64
	for _, m := range schedule {
		if m.Time > now {
			break
		}
		total += m.Percentage
	}
	if total > MaxPercentage {
		return MaxPercentage
	}
	return total
}

func UnlockedPercent(schedule Schedule, now uint64) decimal.Decimal {
	return decimal.New(int64(UnlockedBasisPoints(schedule, now)), -2)
}

// Claimable returns the part of total unlocked at now that has not been claimed yet.
func Claimable(total, claimed *big.Int, schedule Schedule, now uint64) (*big.Int, error) {
	if total == nil || total.Sign() <= 0 {
		return nil, ErrNoClaimableBalance
	}
	if claimed.Cmp(total) >= 0 {
		return nil, ErrAlreadyClaimedAll
	}
	unlocked := new(big.Int).Mul(total, new(big.Int).SetUint64(UnlockedBasisPoints(schedule, now)))
	unlocked.Quo(unlocked, big.NewInt(MaxPercentage))
	if unlocked.Cmp(claimed) <= 0 {
		return big.NewInt(0), nil
	}
	return unlocked.Sub(unlocked, claimed), nil
}
