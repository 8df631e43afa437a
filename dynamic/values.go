package dynamic

import (
	"fmt"
	"math"
	"reflect"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/wippyai/pbconv/errors"
	"github.com/wippyai/pbconv/wire"
)

func mismatch(phase errors.Phase, path []string, v any, kind wire.Kind) *errors.Error {
	return errors.TypeMismatch(phase, path, fmt.Sprintf("%T", v), kind.String())
}

// asInt accepts any Go integer, an integral float, or a decimal string
// or json.Number, and checks that it fits in a signed integer of bits.
func asInt(v any, bits int) (int64, error) {
	target := "int" + strconv.Itoa(bits)
	switch x := v.(type) {
	case json.Number:
		return parseInt(string(x), bits, target)
	case string:
		return parseInt(x, bits, target)
	}

	rv := reflect.ValueOf(v)
	var n int64
	switch {
	case rv.CanInt():
		n = rv.Int()
	case rv.CanUint():
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, errors.Overflow(errors.PhaseEncode, nil, v, target)
		}
		n = int64(u)
	case rv.CanFloat():
		f := rv.Float()
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, errors.TypeMismatch(errors.PhaseEncode, nil, fmt.Sprintf("%T", v), target)
		}
		n = int64(f)
	default:
		return 0, errors.TypeMismatch(errors.PhaseEncode, nil, fmt.Sprintf("%T", v), target)
	}
	if bits < 64 && (n < -1<<(bits-1) || n > 1<<(bits-1)-1) {
		return 0, errors.Overflow(errors.PhaseEncode, nil, v, target)
	}
	return n, nil
}

func parseInt(s string, bits int, target string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, bits)
	if err == nil {
		return n, nil
	}
	if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
		return 0, errors.Overflow(errors.PhaseEncode, nil, s, target)
	}
	// integral values written with an exponent, e.g. 1e3
	if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
		return asInt(f, bits)
	}
	return 0, errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
		WireType(target).
		Value(s).
		Cause(err).
		Build()
}

// asUint is asInt for unsigned targets.
func asUint(v any, bits int) (uint64, error) {
	target := "uint" + strconv.Itoa(bits)
	switch x := v.(type) {
	case json.Number:
		return parseUint(string(x), bits, target)
	case string:
		return parseUint(x, bits, target)
	}

	rv := reflect.ValueOf(v)
	var n uint64
	switch {
	case rv.CanUint():
		n = rv.Uint()
	case rv.CanInt():
		i := rv.Int()
		if i < 0 {
			return 0, errors.Overflow(errors.PhaseEncode, nil, v, target)
		}
		n = uint64(i)
	case rv.CanFloat():
		f := rv.Float()
		if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
			return 0, errors.TypeMismatch(errors.PhaseEncode, nil, fmt.Sprintf("%T", v), target)
		}
		n = uint64(f)
	default:
		return 0, errors.TypeMismatch(errors.PhaseEncode, nil, fmt.Sprintf("%T", v), target)
	}
	if bits < 64 && n > 1<<bits-1 {
		return 0, errors.Overflow(errors.PhaseEncode, nil, v, target)
	}
	return n, nil
}

func parseUint(s string, bits int, target string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, bits)
	if err == nil {
		return n, nil
	}
	if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
		return 0, errors.Overflow(errors.PhaseEncode, nil, s, target)
	}
	if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
		return asUint(f, bits)
	}
	return 0, errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
		WireType(target).
		Value(s).
		Cause(err).
		Build()
}

func asFloat(v any) (float64, error) {
	switch x := v.(type) {
	case json.Number:
		return x.Float64()
	case string:
		return strconv.ParseFloat(x, 64)
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.CanFloat():
		return rv.Float(), nil
	case rv.CanInt():
		return float64(rv.Int()), nil
	case rv.CanUint():
		return float64(rv.Uint()), nil
	}
	return 0, errors.TypeMismatch(errors.PhaseEncode, nil, fmt.Sprintf("%T", v), "float")
}
