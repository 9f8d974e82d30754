package escrow

import "math/bits"

const (
	winnerSharePercent = 90
	percentBase        = 100
)

// Payout is how a resolved prize pool is divided.
type Payout struct {
	WinnerPrize uint64
	Fee         uint64
}

// SplitPrizePool gives the winner floor(pool*90/100) and the fee recipient the rest,
// so the two shares always sum to pool.
func SplitPrizePool(pool uint64) (Payout, error) {
	scaled, err := CheckedMul(pool, winnerSharePercent)
	if err != nil {
		return Payout{}, err
	}

	prize := scaled / percentBase

	fee, err := CheckedSub(pool, prize)
	if err != nil {
		return Payout{}, err
	}

	return Payout{WinnerPrize: prize, Fee: fee}, nil
}

func CheckedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrArithmeticOverflow
	}

	return sum, nil
}

func CheckedSub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrArithmeticUnderflow
	}

	return diff, nil
}

func CheckedMul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrArithmeticOverflow
	}

	return lo, nil
}
