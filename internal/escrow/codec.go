package escrow

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

const discriminatorSize = 8

// Encoded sizes including the discriminator prefix.
const (
	GameRecordSize        = discriminatorSize + 32 + 8 + 8 + 8 + 1 + 8 + 33 + 32
	ParticipantRecordSize = discriminatorSize + 32 + 32 + 8
)

var (
	gameDiscriminator        = discriminator("Game")
	participantDiscriminator = discriminator("PlayerEntry")
)

func discriminator(name string) [discriminatorSize]byte {
	sum := sha256.Sum256([]byte("account:" + name))

	var d [discriminatorSize]byte
	copy(d[:], sum[:discriminatorSize])

	return d
}

// recordWriter appends little-endian fields to a preallocated buffer.
type recordWriter struct{ buf []byte }

func (w *recordWriter) bytes(b []byte) { w.buf = append(w.buf, b...) }

func (w *recordWriter) u64(v uint64) { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }

func (w *recordWriter) bool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
		return
	}

	w.buf = append(w.buf, 0)
}

type recordReader struct {
	buf []byte
	off int
}

func (r *recordReader) next(n int) []byte {
	b := r.buf[r.off : r.off+n]
	r.off += n

	return b
}

func (r *recordReader) u64() uint64 { return binary.LittleEndian.Uint64(r.next(8)) }

func (r *recordReader) flag(field string) (bool, error) {
	switch b := r.next(1)[0]; b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: %s flag byte %d", ErrInvalidRecord, field, b)
	}
}

func (r *recordReader) expect(disc [discriminatorSize]byte, size int, name string) error {
	if len(r.buf) != size {
		return fmt.Errorf("%w: %s must be %d bytes, got %d", ErrInvalidRecord, name, size, len(r.buf))
	}

	if [discriminatorSize]byte(r.next(discriminatorSize)) != disc {
		return fmt.Errorf("%w: %s discriminator mismatch", ErrInvalidRecord, name)
	}

	return nil
}

// MarshalBinary encodes the record in its fixed 138-byte layout.
func (g GameRecord) MarshalBinary() ([]byte, error) {
	w := recordWriter{buf: make([]byte, 0, GameRecordSize)}

	w.bytes(gameDiscriminator[:])
	w.bytes(g.Authority[:])
	w.u64(g.GameID)
	w.u64(g.EntryFee)
	w.u64(g.PrizePool)
	w.bool(g.IsActive)
	w.u64(g.PlayerCount)

	winner, ok := g.Winner.Get()
	w.bool(ok)
	w.bytes(winner[:])

	w.bytes(g.FeeRecipient[:])

	return w.buf, nil
}

func (g *GameRecord) UnmarshalBinary(data []byte) error {
	r := recordReader{buf: data}

	err := r.expect(gameDiscriminator, GameRecordSize, "game record")
	if err != nil {
		return err
	}

	var out GameRecord

	copy(out.Authority[:], r.next(32))
	out.GameID = r.u64()
	out.EntryFee = r.u64()
	out.PrizePool = r.u64()

	out.IsActive, err = r.flag("is_active")
	if err != nil {
		return err
	}

	out.PlayerCount = r.u64()

	hasWinner, err := r.flag("winner")
	if err != nil {
		return err
	}

	var winner Identity
	copy(winner[:], r.next(32))

	if hasWinner {
		out.Winner = Some(winner)
	}

	copy(out.FeeRecipient[:], r.next(32))

	*g = out

	return nil
}

// MarshalBinary encodes the record in its fixed 80-byte layout.
func (p ParticipantRecord) MarshalBinary() ([]byte, error) {
	w := recordWriter{buf: make([]byte, 0, ParticipantRecordSize)}

	w.bytes(participantDiscriminator[:])
	w.bytes(p.Player[:])
	w.bytes(p.Game[:])
	w.u64(uint64(p.JoinedAt))

	return w.buf, nil
}

func (p *ParticipantRecord) UnmarshalBinary(data []byte) error {
	r := recordReader{buf: data}

	err := r.expect(participantDiscriminator, ParticipantRecordSize, "participant record")
	if err != nil {
		return err
	}

	var out ParticipantRecord

	copy(out.Player[:], r.next(32))
	copy(out.Game[:], r.next(32))
	out.JoinedAt = int64(r.u64())

	*p = out

	return nil
}
