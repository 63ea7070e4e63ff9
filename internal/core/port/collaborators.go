package port

import "context"

// FileStore resolves an uploaded-file id to its binary content and name.
// Creative assets are uploaded out of band; the launcher only ever reads.
type FileStore interface {
	Resolve(ctx context.Context, fileID string) (*File, error)
}

// Billing is the external ledger boundary. It is consumed on campaign
// status transitions; balances and transactions live in another service.
type Billing interface {
	Balance(ctx context.Context, ownerID int64) (int64, error)
	Debit(ctx context.Context, ownerID, amount, campaignID int64) error
	Refund(ctx context.Context, ownerID, amount, campaignID int64) error
}

// TickGuard provides cross-process mutual exclusion for background tasks.
// TryLock returns ok=false when another holder owns the name; the caller
// skips its run. The release func must be called when ok.
type TickGuard interface {
	TryLock(ctx context.Context, name string) (release func(), ok bool, err error)
}
