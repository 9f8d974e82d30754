package escrow

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identity(b byte) Identity {
	var id Identity
	for i := range id {
		id[i] = b
	}

	return id
}

func TestGameRecord_RecordJoin(t *testing.T) {
	t.Parallel()

	g := NewGameRecord(1, 100, identity(1), identity(2))

	for i := 0; i < 3; i++ {
		require.NoError(t, g.RecordJoin())
	}

	assert.Equal(t, uint64(300), g.PrizePool)
	assert.Equal(t, uint64(3), g.PlayerCount)
	assert.Equal(t, g.PlayerCount*g.EntryFee, g.PrizePool)
}

func TestGameRecord_RecordJoin_OverflowLeavesRecord(t *testing.T) {
	t.Parallel()

	g := NewGameRecord(1, 1, identity(1), identity(2))
	g.PrizePool = math.MaxUint64
	g.PlayerCount = 7

	before := g

	err := g.RecordJoin()
	require.ErrorIs(t, err, ErrArithmeticOverflow)
	assert.Equal(t, before, g)
}

func TestGameRecord_RecordJoin_Inactive(t *testing.T) {
	t.Parallel()

	g := NewGameRecord(1, 5, identity(1), identity(2))
	g.IsActive = false

	require.ErrorIs(t, g.RecordJoin(), ErrGameNotActive)
	assert.Zero(t, g.PrizePool)
}

func TestGameRecord_Resolve(t *testing.T) {
	t.Parallel()

	authority, recipient, winner, stranger := identity(1), identity(2), identity(3), identity(4)

	tests := []struct {
		name         string
		active       bool
		caller       Identity
		feeRecipient Identity
		wantErr      error
	}{
		{name: "ok", active: true, caller: authority, feeRecipient: recipient},
		{name: "already_resolved", active: false, caller: authority, feeRecipient: recipient, wantErr: ErrGameNotActive},
		{name: "wrong_caller", active: true, caller: stranger, feeRecipient: recipient, wantErr: ErrUnauthorized},
		{name: "redirected_fee", active: true, caller: authority, feeRecipient: stranger, wantErr: ErrFeeRecipientMismatch},
		{name: "inactive_beats_unauthorized", active: false, caller: stranger, feeRecipient: stranger, wantErr: ErrGameNotActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := NewGameRecord(9, 100, authority, recipient)
			g.PrizePool = 300
			g.PlayerCount = 3
			g.IsActive = tt.active

			before := g

			payout, err := g.Resolve(tt.caller, winner, tt.feeRecipient)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, before, g, "record must not change on error")

				return
			}

			require.NoError(t, err)
			assert.Equal(t, Payout{WinnerPrize: 270, Fee: 30}, payout)
			assert.False(t, g.IsActive)

			got, ok := g.Winner.Get()
			require.True(t, ok)
			assert.Equal(t, winner, got)
			assert.Equal(t, uint64(300), g.PrizePool, "pool total is kept for history")

			_, err = g.Resolve(authority, stranger, recipient)
			require.ErrorIs(t, err, ErrGameNotActive)

			got, _ = g.Winner.Get()
			assert.Equal(t, winner, got, "winner is set exactly once")
		})
	}
}

func TestOptionalIdentity_JSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(None())
	require.NoError(t, err)
	assert.JSONEq(t, `null`, string(b))

	id := identity(7)

	b, err = json.Marshal(Some(id))
	require.NoError(t, err)
	assert.JSONEq(t, `"`+id.String()+`"`, string(b))

	var decoded OptionalIdentity
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, Some(id), decoded)

	require.NoError(t, json.Unmarshal([]byte(`null`), &decoded))
	assert.False(t, decoded.IsSome())
}

func TestParseIdentity(t *testing.T) {
	t.Parallel()

	id := identity(9)

	parsed, err := ParseIdentity(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseIdentity("")
	assert.Error(t, err)

	_, err = ParseIdentity("0OIl")
	assert.Error(t, err, "characters outside the base58 alphabet")

	_, err = ParseIdentity("3yZe7d")
	assert.Error(t, err, "too short")

	assert.Equal(t, "25jUhpQfPWWJ9e4BaP6eNyH3y1YrhF9CDY5DHPhTBiFW", ProgramID.String())
}
