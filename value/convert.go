package value

import (
	"math"

	"github.com/wippyai/mswasm-runtime/errors"
)

// TruncI32 truncates f toward zero. NaN, infinities and results outside the
// int32 range fail.
func TruncI32(f float64) (I32, error) {
	if err := checkTrunc(f, -2147483649, 2147483648); err != nil {
		return 0, err
	}
	return I32(int32(f)), nil
}

// TruncU32 truncates f toward zero into the uint32 range and returns the
// bits as I32.
func TruncU32(f float64) (I32, error) {
	if err := checkTrunc(f, -1, 4294967296); err != nil {
		return 0, err
	}
	return FromU32(uint32(math.Trunc(f))), nil
}

// TruncI64 truncates f toward zero. NaN, infinities and results outside the
// int64 range fail.
func TruncI64(f float64) (I64, error) {
	if err := checkTrunc(f, -9223372036854777856, 9223372036854775808); err != nil {
		return 0, err
	}
	return I64(int64(f)), nil
}

// TruncU64 truncates f toward zero into the uint64 range and returns the
// bits as I64.
func TruncU64(f float64) (I64, error) {
	if err := checkTrunc(f, -1, 18446744073709551616); err != nil {
		return 0, err
	}
	return FromU64(uint64(math.Trunc(f))), nil
}

// checkTrunc requires lo < f < hi after truncation.
func checkTrunc(f, lo, hi float64) error {
	if math.IsNaN(f) {
		return errors.InvalidInput(errors.PhaseValue, "truncation of NaN")
	}
	if math.IsInf(f, 0) {
		return errors.Overflow(errors.PhaseValue, f, "truncation of infinity")
	}
	t := math.Trunc(f)
	if t <= lo || t >= hi {
		return errors.Overflow(errors.PhaseValue, f, "truncated value out of integer range")
	}
	return nil
}
