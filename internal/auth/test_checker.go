package auth

import (
	"context"
	"sync"
)

// TestChecker is an in-memory Checker for handler and middleware tests.
type TestChecker struct {
	mu       sync.Mutex
	sessions map[string]int
}

func NewTestChecker() *TestChecker {
	return &TestChecker{
		sessions: map[string]int{},
	}
}

func (c *TestChecker) Add(token string, userID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[token] = userID
}

func (c *TestChecker) UserID(_ context.Context, token string) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	userID, ok := c.sessions[token]
	return userID, ok, nil
}
