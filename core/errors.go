package core

import "errors"

var (
	// ErrUnknownNetwork is returned when a network key is not registered
	ErrUnknownNetwork = errors.New("unknown network")

	// ErrUnknownContract is returned when a contract name has no address on a network
	ErrUnknownContract = errors.New("unknown contract")

	// ErrNoProvider is returned when no signing provider is injected
	ErrNoProvider = errors.New("no wallet provider available")

	// ErrProviderUnavailable is returned when an RPC endpoint cannot be reached
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrNetworkSwitchFailed is returned when the wallet could not be moved to the target chain
	ErrNetworkSwitchFailed = errors.New("network switch failed")

	// ErrUserRejected is returned when the user declined a request in the provider UI
	ErrUserRejected = errors.New("user rejected request")

	// ErrTransactionFailed is returned when a transaction reverted or confirmed as failed
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrAuthFailed is returned when the authentication flow failed at any step
	ErrAuthFailed = errors.New("authentication failed")

	// ErrAlreadyAuthenticating is returned when an authenticate call is already in flight
	ErrAlreadyAuthenticating = errors.New("authentication already in progress")

	// ErrUnauthorized is returned when the relay reports an authorization failure
	ErrUnauthorized = errors.New("unauthorized")
)
