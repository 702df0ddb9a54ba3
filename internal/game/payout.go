package game

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// prizePerWinner splits the pool evenly with floor division. The remainder
// stays in escrow as dust.
func prizePerWinner(totalStaked uint64, winners uint64) (uint64, error) {
	if winners == 0 {
		return 0, fmt.Errorf("winner count is zero")
	}
	pool, err := poolOf(totalStaked)
	if err != nil {
		return 0, err
	}
	return pool / winners, nil
}

// poolOf is TotalStaked*StakeAmount. The escrow balance is a uint64, so a
// pool that does not fit is an error everywhere it is computed.
func poolOf(totalStaked uint64) (uint64, error) {
	pool := sdkmath.NewUint(totalStaked).Mul(sdkmath.NewUint(StakeAmount))
	if !pool.BigInt().IsUint64() {
		return 0, fmt.Errorf("pool of %d stakes overflows uint64", totalStaked)
	}
	return pool.Uint64(), nil
}

// dustOf is the part of the pool no winner can claim.
func dustOf(st *State) (uint64, error) {
	if !st.Round.Revealed {
		return 0, nil
	}
	pool, err := poolOf(st.TotalStaked)
	if err != nil {
		return 0, err
	}
	paidOut, err := mulUint64Checked(st.Round.WinnerCount, st.Round.PrizePerWinner, "winner payout")
	if err != nil {
		return 0, err
	}
	if paidOut > pool {
		return 0, fmt.Errorf("winner payout %d exceeds pool %d", paidOut, pool)
	}
	return pool - paidOut, nil
}
