package gateway

import (
	"errors"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"

	"github.com/gridmesh/station/core"
)

// ErrorClass partitions provider errors into user cancellations and genuine
// faults.
type ErrorClass int

const (
	ClassOther ErrorClass = iota
	ClassUserRejected
)

const codeUserRejected = 4001

// Classify reports whether err is a user rejection. Providers surface
// rejection in different places, so all of them are checked: the top-level
// numeric code, the named action-rejected code, codes on nested errors, and
// rejection phrasing in the message.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassOther
	}
	if errors.Is(err, core.ErrUserRejected) {
		return ClassUserRejected
	}

	var provErr *core.ProviderError
	if errors.As(err, &provErr) {
		for e := provErr; e != nil; e = e.Inner {
			if e.Code == codeUserRejected {
				return ClassUserRejected
			}
			if strings.EqualFold(e.ActionCode, "ACTION_REJECTED") {
				return ClassUserRejected
			}
		}
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == codeUserRejected {
		return ClassUserRejected
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "user rejected") || strings.Contains(msg, "user denied") {
		return ClassUserRejected
	}
	return ClassOther
}

// ToBigInt normalizes a contract call result to an exact integer. Anything
// unrecognized counts as zero, mirroring the defaulting applied at the
// deserialization boundary.
func ToBigInt(v interface{}) *big.Int {
	switch val := v.(type) {
	case *big.Int:
		if val == nil {
			return new(big.Int)
		}
		return new(big.Int).Set(val)
	case big.Int:
		return new(big.Int).Set(&val)
	case uint64:
		return new(big.Int).SetUint64(val)
	case int64:
		if val < 0 {
			return new(big.Int)
		}
		return big.NewInt(val)
	case uint8:
		return big.NewInt(int64(val))
	case string:
		parsed, ok := new(big.Int).SetString(val, 10)
		if !ok {
			return new(big.Int)
		}
		return parsed
	default:
		return new(big.Int)
	}
}
