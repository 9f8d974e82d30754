package escrow

import "errors"

var (
	ErrGameNotActive        = errors.New("game is not active")
	ErrUnauthorized         = errors.New("unauthorized access")
	ErrFeeRecipientMismatch = errors.New("fee recipient does not match game")
	ErrAddressOccupied      = errors.New("address already in use")
	ErrArithmeticOverflow   = errors.New("arithmetic overflow")
	ErrArithmeticUnderflow  = errors.New("arithmetic underflow")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrNotAWallet           = errors.New("account is not a wallet")
	ErrNotFound             = errors.New("account not found")
	ErrInvalidRecord        = errors.New("invalid record data")
	ErrInvalidIdentity      = errors.New("identity is not an ed25519 public key")
)
