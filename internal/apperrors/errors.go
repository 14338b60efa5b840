package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the requested state transition is not allowed
// from the resource's current state.
var ErrConflict = errors.New("conflicting resource state")

// ErrForbidden indicates that the caller is not allowed to perform the action.
var ErrForbidden = errors.New("action forbidden")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// ErrInsufficientBalance indicates that an account lacks the tokens or
// secondary currency required by the requested operation.
var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrListingUnavailable indicates that a listing is not in the active state.
var ErrListingUnavailable = errors.New("listing unavailable")

// ErrSelfTrade indicates that the buyer and seller of a purchase are the
// same account.
var ErrSelfTrade = errors.New("self trade not allowed")

// ErrInvalidSignature indicates that a wallet signature field is missing or
// too short to be plausible. Signatures are treated as opaque provenance
// strings and are not verified cryptographically.
var ErrInvalidSignature = errors.New("invalid signature")

// ErrStorageUnavailable indicates that the content store could not be
// reached. Callers degrade to the volatile fallback store rather than
// failing; results produced this way are flagged as degraded.
var ErrStorageUnavailable = errors.New("content store unavailable")
