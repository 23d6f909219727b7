package ledger

import "fmt"

// StoreError is a sentinel returned by AccountStore implementations.
type StoreError struct {
	Message string
}

func (e *StoreError) Error() string {
	return e.Message
}

var (
	// ErrRecordAbsent means the address holds no account. Callers branch on
	// it; it is not a failure of the store.
	ErrRecordAbsent = &StoreError{"record absent"}
	// ErrStoreUnavailable covers transport failures, JSON-RPC error objects
	// and responses that cannot be understood.
	ErrStoreUnavailable = &StoreError{"store unavailable"}
)

// RemoteError is a JSON-RPC error object returned by the validator.
type RemoteError struct {
	Code    int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Unwrap lets errors.Is(err, ErrStoreUnavailable) match remote errors.
func (e *RemoteError) Unwrap() error {
	return ErrStoreUnavailable
}
