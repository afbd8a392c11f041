package vesting

import (
	"math/big"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestClaimable_TwoMilestones(t *testing.T) {
	schedule := Schedule{{Time: 0, Percentage: 5000}, {Time: 1, Percentage: 5000}}
	total := big.NewInt(100)

	amount, err := Claimable(total, big.NewInt(0), schedule, 0)
	require.NoError(t, err)
	require.Equal(t, int64(50), amount.Int64())

	amount, err = Claimable(total, big.NewInt(0), schedule, 1)
	require.NoError(t, err)
	require.Equal(t, int64(100), amount.Int64())

	amount, err = Claimable(total, big.NewInt(50), schedule, 1)
	require.NoError(t, err)
	require.Equal(t, int64(50), amount.Int64())

	amount, err = Claimable(total, big.NewInt(50), schedule, 0)
	require.NoError(t, err)
	require.Zero(t, amount.Sign())

	_, err = Claimable(total, big.NewInt(100), schedule, 1)
	require.Equal(t, ErrAlreadyClaimedAll, err)
	require.EqualError(t, err, "already claimed all")

	_, err = Claimable(big.NewInt(0), big.NewInt(0), schedule, 1)
	require.Equal(t, ErrNoClaimableBalance, err)
}

func TestClaimable_RoundsDown(t *testing.T) {
	schedule := Schedule{{Time: 10, Percentage: 3333}, {Time: 20, Percentage: 6667}}
	amount, err := Claimable(big.NewInt(10), big.NewInt(0), schedule, 15)
	require.NoError(t, err)
	require.Equal(t, int64(3), amount.Int64())
}

func TestValidateSchedule(t *testing.T) {
	require.NoError(t, ValidateSchedule(Schedule{{Time: 5, Percentage: 10000}}, 5))
	require.NoError(t, ValidateSchedule(Schedule{{Time: 5, Percentage: 2500}, {Time: 5, Percentage: 7500}}, 1))

	require.Equal(t, ErrEmptySchedule, ValidateSchedule(nil, 0))
	require.Error(t, ValidateSchedule(Schedule{{Time: 4, Percentage: 10000}}, 5))
	require.Error(t, ValidateSchedule(Schedule{{Time: 6, Percentage: 5000}, {Time: 5, Percentage: 5000}}, 1))
	require.Equal(t, ErrInvalidPercentage, ValidateSchedule(Schedule{{Time: 6, Percentage: 10001}}, 1))
	require.Equal(t, ErrInvalidTotal, ValidateSchedule(Schedule{{Time: 6, Percentage: 5000}, {Time: 7, Percentage: 4999}}, 1))
}

func TestUnlockedPercent(t *testing.T) {
	schedule := Schedule{{Time: 3, Percentage: 1250}, {Time: 8, Percentage: 8750}}
	require.Equal(t, "0", UnlockedPercent(schedule, 2).String())
	require.Equal(t, "12.5", UnlockedPercent(schedule, 3).String())
	require.Equal(t, "100", UnlockedPercent(schedule, 9).String())
}

func genSchedule(t *rapid.T) Schedule {
	n := rapid.IntRange(1, 6).Draw(t, "milestones")
	times := make([]uint64, n)
	for i := range times {
		times[i] = rapid.Uint64Range(0, 1000).Draw(t, "time")
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	schedule := make(Schedule, n)
	left := uint64(MaxPercentage)
	for i := range schedule {
		pct := left
		if i < n-1 {
			pct = rapid.Uint64Range(0, left).Draw(t, "percentage")
		}
		left -= pct
		schedule[i] = UnlockMilestone{Time: times[i], Percentage: pct}
	}
	return schedule
}

func TestClaimable_Monotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		schedule := genSchedule(t)
		require.NoError(t, ValidateSchedule(schedule, 0))

		total := new(big.Int).SetUint64(rapid.Uint64Range(1, 1<<40).Draw(t, "total"))
		zero := big.NewInt(0)

		prev := big.NewInt(0)
		for now := uint64(0); now <= 1001; now += rapid.Uint64Range(1, 50).Draw(t, "step") {
			amount, err := Claimable(total, zero, schedule, now)
			require.NoError(t, err)
			require.True(t, amount.Cmp(prev) >= 0)
			prev = amount
		}
		last := schedule[len(schedule)-1].Time
		amount, err := Claimable(total, zero, schedule, last)
		require.NoError(t, err)
		require.Equal(t, total.String(), amount.String())
	})
}
