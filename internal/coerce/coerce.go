// Package coerce converts loosely-typed script values into fixed-width numbers.
//
// The strict functions accept only lossless conversions. The lenient ones
// follow script-engine rules: floats truncate toward zero, out-of-range
// integers wrap, numeric strings parse, booleans count as 0 and 1.
package coerce

import (
	"math"
	"strconv"
	"strings"
)

// Int64 converts value to int64 without loss.
func Int64(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint:
		if uint64(v) <= math.MaxInt64 {
			return int64(v), true
		}
	case uint64:
		if v <= math.MaxInt64 {
			return int64(v), true
		}
	case float64:
		// 2^63 is exactly representable, MaxInt64 is not
		if v >= math.MinInt64 && v < math.MaxInt64 && v == math.Trunc(v) {
			return int64(v), true
		}
	case float32:
		f := float64(v)
		if f >= math.MinInt64 && f < math.MaxInt64 && f == math.Trunc(f) {
			return int64(f), true
		}
	}
	return 0, false
}

// Uint64 converts value to uint64 without loss.
func Uint64(value any) (uint64, bool) {
	switch v := value.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case uint8:
		return uint64(v), true
	case uint16:
		return uint64(v), true
	case uint32:
		return uint64(v), true
	case float64:
		if v >= 0 && v < math.MaxUint64 && v == math.Trunc(v) {
			return uint64(v), true
		}
	case float32:
		f := float64(v)
		if f >= 0 && f < math.MaxUint64 && f == math.Trunc(f) {
			return uint64(f), true
		}
	default:
		if i, ok := Int64(value); ok && i >= 0 {
			return uint64(i), true
		}
	}
	return 0, false
}

// Signed converts value to a signed integer of the given bit width without loss.
func Signed(value any, bits uint) (int64, bool) {
	i, ok := Int64(value)
	if !ok {
		return 0, false
	}
	if bits < 64 {
		lim := int64(1) << (bits - 1)
		if i < -lim || i >= lim {
			return 0, false
		}
	}
	return i, true
}

// Unsigned converts value to an unsigned integer of the given bit width without loss.
func Unsigned(value any, bits uint) (uint64, bool) {
	u, ok := Uint64(value)
	if !ok {
		return 0, false
	}
	if bits < 64 && u >= uint64(1)<<bits {
		return 0, false
	}
	return u, true
}

// Float64 converts a numeric value to float64. Integers beyond 2^53 are rejected.
func Float64(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	}
	const exact = 1 << 53
	if i, ok := Int64(value); ok {
		if i >= -exact && i <= exact {
			return float64(i), true
		}
		return 0, false
	}
	if u, ok := Uint64(value); ok && u <= exact {
		return float64(u), true
	}
	return 0, false
}

// Float32 converts value to float32 when the conversion round-trips.
func Float32(value any) (float32, bool) {
	if v, ok := value.(float32); ok {
		return v, true
	}
	f, ok := Float64(value)
	if !ok {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || float64(float32(f)) == f {
		return float32(f), true
	}
	return 0, false
}

// LenientFloat64 converts any scalar to float64 the way a script engine would.
func LenientFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN(), true
		}
		return f, true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case uint:
		return float64(v), true
	}
	if i, ok := Int64(value); ok {
		return float64(i), true
	}
	return 0, false
}

// LenientUint64 converts any scalar to a 64-bit pattern, truncating and
// wrapping as needed. Callers narrow the result with a plain conversion.
func LenientUint64(value any) (uint64, bool) {
	switch v := value.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		return uint64(v), true
	case int64:
		return uint64(v), true
	}
	if i, ok := Int64(value); ok {
		return uint64(i), true
	}
	f, ok := LenientFloat64(value)
	if !ok {
		return 0, false
	}
	return wrapFloat(f), true
}

// LenientInt32 mirrors a script engine's Int32Value conversion.
func LenientInt32(value any) int32 {
	u, ok := LenientUint64(value)
	if !ok {
		return 0
	}
	return int32(u)
}

// LenientBool converts a scalar to bool: non-zero numbers and non-empty
// strings other than "false" and "0" are true.
func LenientBool(value any) (bool, bool) {
	switch v := value.(type) {
	case nil:
		return false, true
	case bool:
		return v, true
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b, true
		}
		return v != "", true
	}
	f, ok := LenientFloat64(value)
	if !ok {
		return false, false
	}
	return f != 0 && !math.IsNaN(f), true
}

// FormatScalar renders a scalar as a string. Non-scalars report false.
func FormatScalar(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case nil:
		return "", true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	}
	if i, ok := Int64(value); ok {
		return strconv.FormatInt(i, 10), true
	}
	return "", false
}

// wrapFloat truncates f toward zero and reduces it modulo 2^64.
// NaN and infinities become 0.
func wrapFloat(f float64) uint64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	f = math.Trunc(f)
	if f >= -(1<<63) && f < 1<<63 {
		return uint64(int64(f))
	}
	const two64 = 18446744073709551616.0
	f = math.Mod(f, two64)
	if f < 0 {
		f += two64
	}
	if f >= 1<<63 {
		return uint64(f-(1<<63)) + 1<<63
	}
	return uint64(f)
}
