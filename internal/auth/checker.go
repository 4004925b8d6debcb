package auth

import "context"

var _ Checker = (*LoginChecker)(nil)
var _ Checker = (*TestChecker)(nil)

type Checker interface {
	// UserID resolves the session token to the owning user.
	// Returns false without an error when the session is not valid.
	UserID(ctx context.Context, token string) (int, bool, error)
}
