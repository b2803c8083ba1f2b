package sentinel

import "errors"

// Infrastructure facts returned by stores, optionally wrapped. Services translate
// them into coded domain errors; they never reach transport directly.
//
//   - ErrNotFound: no party row matches the lookup key
//   - ErrAlreadyUsed: a unique key (custId, emailId) already belongs to another row
//   - ErrConflict: optimistic version check failed; the row changed since it was read
//   - ErrUnavailable: backing store or broker cannot be reached
var (
	ErrNotFound    = errors.New("not found")
	ErrAlreadyUsed = errors.New("already used")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
