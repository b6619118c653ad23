package core

import "fmt"

// ProviderError is a structured error surfaced by a wallet provider. Providers
// disagree about where they put the rejection code, so the original error may
// carry it at the top level, inside a nested error, or only in the message;
// Inner preserves the nesting so classification can walk it.
type ProviderError struct {
	Code       int64
	ActionCode string
	Message    string
	Inner      *ProviderError
}

func (e *ProviderError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
	}
	if e.ActionCode != "" {
		return fmt.Sprintf("provider error %s: %s", e.ActionCode, e.Message)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	if e.Inner == nil {
		return nil
	}
	return e.Inner
}
