package infra

import (
	"strconv"
)

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is a constraint that permits any unsigned integer type.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Integer is a constraint that permits any integer type.
// Tree keys are restricted to it because the persisted token
// format is decimal only.
type Integer interface {
	Signed | Unsigned
}

// IntegerComparator
// Assume i is the new key.
//  1. i == j, return 0
//  2. i > j, return 1, turn to right part.
//  3. i < j, return -1, turn to left part.
type IntegerComparator[K Integer] func(i, j K) int64

func CompareInteger[K Integer](i, j K) int64 {
	if i == j {
		return 0
	} else if i < j {
		return -1
	}
	return 1
}

func isUnsigned[K Integer]() bool {
	var zero K
	return zero-1 > zero
}

// ParseInteger converts a decimal token into K.
// Out of range values for K are rejected instead of being truncated.
func ParseInteger[K Integer](token string) (K, error) {
	var k K
	if isUnsigned[K]() {
		u, err := strconv.ParseUint(token, 10, 64)
		if err != nil {
			return k, err
		}
		if k = K(u); uint64(k) != u {
			return 0, &strconv.NumError{Func: "ParseUint", Num: token, Err: strconv.ErrRange}
		}
		return k, nil
	}

	i, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return k, err
	}
	if k = K(i); int64(k) != i {
		return 0, &strconv.NumError{Func: "ParseInt", Num: token, Err: strconv.ErrRange}
	}
	return k, nil
}

// AppendInteger appends the decimal form of k to dst.
func AppendInteger[K Integer](dst []byte, k K) []byte {
	if isUnsigned[K]() {
		return strconv.AppendUint(dst, uint64(k), 10)
	}
	return strconv.AppendInt(dst, int64(k), 10)
}
