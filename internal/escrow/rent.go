package escrow

import "fmt"

// accountStorageOverhead is charged for every account on top of its data length.
const accountStorageOverhead = 128

// Rent prices the minimum balance that keeps a record stored. The zero value
// charges nothing.
type Rent struct {
	LamportsPerByteYear uint64
	ExemptionYears      uint64
}

func DefaultRent() Rent {
	return Rent{LamportsPerByteYear: 3480, ExemptionYears: 2}
}

// MinimumBalance returns the rent-exempt reserve for an account holding dataLen bytes.
func (r Rent) MinimumBalance(dataLen int) (uint64, error) {
	if dataLen < 0 {
		return 0, fmt.Errorf("negative data length %d", dataLen)
	}

	size, err := CheckedAdd(accountStorageOverhead, uint64(dataLen))
	if err != nil {
		return 0, err
	}

	perYear, err := CheckedMul(size, r.LamportsPerByteYear)
	if err != nil {
		return 0, err
	}

	return CheckedMul(perYear, r.ExemptionYears)
}
