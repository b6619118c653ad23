package provider

import (
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/gridmesh/station/core"
)

// convertError normalizes a JSON-RPC error into a ProviderError, preserving
// any nested error object the bridge forwarded from the wallet so rejection
// classification can walk it.
func convertError(err error) error {
	if err == nil {
		return nil
	}

	provErr := &core.ProviderError{Message: err.Error()}
	if rpcErr, ok := err.(rpc.Error); ok {
		provErr.Code = int64(rpcErr.ErrorCode())
	}
	if dataErr, ok := err.(rpc.DataError); ok {
		provErr.Inner = nestedFromData(dataErr.ErrorData())
	}
	return provErr
}

// nestedFromData extracts an error object embedded in the JSON-RPC error
// data field, in either the {"error": {...}} or flat {"code": ...} shape.
func nestedFromData(data interface{}) *core.ProviderError {
	obj, ok := data.(map[string]interface{})
	if !ok {
		return nil
	}
	if inner, ok := obj["error"].(map[string]interface{}); ok {
		obj = inner
	}

	nested := &core.ProviderError{}
	switch code := obj["code"].(type) {
	case float64:
		nested.Code = int64(code)
	case string:
		nested.ActionCode = code
	}
	if msg, ok := obj["message"].(string); ok {
		nested.Message = msg
	}
	if nested.Code == 0 && nested.ActionCode == "" && nested.Message == "" {
		return nil
	}
	return nested
}
