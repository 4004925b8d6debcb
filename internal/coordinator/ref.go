package coordinator

import (
	"strconv"

	"github.com/google/uuid"
)

// Ref points at an entity of the projection. A Confirmed ref carries the
// remote id, a Pending ref a local token for an entity whose create call
// has not returned yet. Pending tokens never leave the session.
type Ref struct {
	id    int
	token uuid.UUID
}

func Confirmed(id int) Ref {
	return Ref{id: id}
}

func Pending(token uuid.UUID) Ref {
	return Ref{token: token}
}

func newPending() Ref {
	return Pending(uuid.New())
}

func (r Ref) IsPending() bool {
	return r.token != uuid.Nil
}

// ID returns the remote id, false for pending refs.
func (r Ref) ID() (int, bool) {
	if r.IsPending() {
		return 0, false
	}
	return r.id, true
}

func (r Ref) Token() uuid.UUID {
	return r.token
}

func (r Ref) String() string {
	if r.IsPending() {
		return "pending:" + r.token.String()
	}
	return strconv.Itoa(r.id)
}
