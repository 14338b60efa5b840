package repositories

import "context"

// AddressIndex maps an account key to the CID of that account's latest
// balance snapshot. It is the single point of currency for readers: older
// snapshot versions stay in the content store but are no longer addressable
// here once superseded.
//
// Resolve returns ErrNotFound when the account has no history. Reverse
// lookup failures against the content store are non-fatal and reported the
// same way, matching the intent that unknown accounts start fresh.
type AddressIndex interface {
	Resolve(ctx context.Context, accountKey string) (string, error)
	Update(ctx context.Context, accountKey string, cid string) error
}
