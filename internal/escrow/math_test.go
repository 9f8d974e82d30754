package escrow

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPrizePool_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		pool      uint64
		wantPrize uint64
		wantFee   uint64
	}{
		{name: "empty_pool", pool: 0, wantPrize: 0, wantFee: 0},
		{name: "single_lamport_goes_to_fee", pool: 1, wantPrize: 0, wantFee: 1},
		{name: "three_players_of_100", pool: 300, wantPrize: 270, wantFee: 30},
		{name: "floor_rounding", pool: 19, wantPrize: 17, wantFee: 2},
		{name: "ten", pool: 10, wantPrize: 9, wantFee: 1},
		{name: "largest_splittable", pool: math.MaxUint64 / 90, wantPrize: math.MaxUint64 / 90 * 90 / 100, wantFee: math.MaxUint64/90 - math.MaxUint64/90*90/100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := SplitPrizePool(tt.pool)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPrize, got.WinnerPrize)
			assert.Equal(t, tt.wantFee, got.Fee)
		})
	}
}

func TestSplitPrizePool_NoDust(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 10_000; i++ {
		pool := rng.Uint64() % (math.MaxUint64 / 90)

		got, err := SplitPrizePool(pool)
		require.NoError(t, err)
		require.Equal(t, pool, got.WinnerPrize+got.Fee, "pool %d", pool)
		require.Equal(t, pool*90/100, got.WinnerPrize, "pool %d", pool)
	}
}

func TestSplitPrizePool_OverflowAborts(t *testing.T) {
	t.Parallel()

	_, err := SplitPrizePool(math.MaxUint64/90 + 1)
	require.ErrorIs(t, err, ErrArithmeticOverflow)

	_, err = SplitPrizePool(math.MaxUint64)
	require.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestCheckedArithmetic(t *testing.T) {
	t.Parallel()

	sum, err := CheckedAdd(math.MaxUint64-1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), sum)

	_, err = CheckedAdd(math.MaxUint64, 1)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)

	diff, err := CheckedSub(5, 5)
	require.NoError(t, err)
	assert.Zero(t, diff)

	_, err = CheckedSub(4, 5)
	assert.ErrorIs(t, err, ErrArithmeticUnderflow)

	_, err = CheckedMul(math.MaxUint64, 2)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)

	prod, err := CheckedMul(1<<32, 1<<31)
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<63), prod)
}

func TestRent_MinimumBalance(t *testing.T) {
	t.Parallel()

	rent := DefaultRent()

	vault, err := rent.MinimumBalance(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(890_880), vault)

	game, err := rent.MinimumBalance(GameRecordSize)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_851_360), game)

	participant, err := rent.MinimumBalance(ParticipantRecordSize)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_447_680), participant)

	free, err := Rent{}.MinimumBalance(GameRecordSize)
	require.NoError(t, err)
	assert.Zero(t, free)

	_, err = Rent{LamportsPerByteYear: math.MaxUint64, ExemptionYears: 1}.MinimumBalance(1)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)

	_, err = rent.MinimumBalance(-1)
	assert.Error(t, err)
}
