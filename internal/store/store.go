// Package store defines the external collaborator that supplies approved
// hard day-off requests to a solve. The core roster package never depends
// on this package directly — it only consumes the HardRequest slice the
// transport layer attaches to Input before calling roster.Generate.
package store

import (
	"context"
	"time"

	"github.com/nurseward/rosterd/internal/roster"
)

// HardRequestStore fetches every approved hard request that falls inside
// [start, end] for the given nurse IDs. A nil slice with a nil error means
// "no approved requests", which is indistinguishable from "store
// unavailable" at the call site by design — both degrade to an unconstrained
// solve for those nurses.
type HardRequestStore interface {
	ApprovedHardRequests(ctx context.Context, start, end time.Time, nurseIDs []string) ([]roster.HardRequest, error)
}

// nullStore is the zero-value HardRequestStore: it always returns no
// requests and no error. It exists so a deployment without a configured
// Postgres DSN behaves exactly like the original's "Firestore Admin not
// initialized, skipping Hard Request check" path, without a nil-interface
// check scattered through the transport layer.
type nullStore struct{}

// NullStore returns the always-empty HardRequestStore used when no DSN is
// configured.
func NullStore() HardRequestStore { return nullStore{} }

func (nullStore) ApprovedHardRequests(ctx context.Context, start, end time.Time, nurseIDs []string) ([]roster.HardRequest, error) {
	return nil, nil
}
