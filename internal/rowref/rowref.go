// Package rowref holds the identity of a client-side row: either pending
// (created locally, carrying a temporary id) or persisted (carrying the server id).
package rowref

import (
	"fmt"

	"github.com/google/uuid"
)

type Ref struct {
	tempID   string
	serverID int64
}

// Pending returns a new pending ref with a fresh temporary id.
func Pending() Ref {
	return Ref{tempID: uuid.NewString()}
}

// PendingWithID is Pending with a caller chosen temporary id.
func PendingWithID(tempID string) Ref {
	return Ref{tempID: tempID}
}

func Persisted(serverID int64) Ref {
	return Ref{serverID: serverID}
}

func (r Ref) IsPending() bool {
	return r.serverID == 0
}

func (r Ref) IsZero() bool {
	return r.serverID == 0 && r.tempID == ""
}

// ServerID returns the server id and whether the ref is persisted.
func (r Ref) ServerID() (int64, bool) {
	return r.serverID, r.serverID != 0
}

func (r Ref) TempID() string {
	return r.tempID
}

func (r Ref) String() string {
	if r.IsPending() {
		return "pending:" + r.tempID
	}
	return fmt.Sprintf("persisted:%d", r.serverID)
}
