package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "liftlog-session||"
	tokensSetKey     = "liftlog-sessions"
)

var ErrMalformedSession = errors.New("malformed session value")

type LoginSession struct {
	Token     string
	UserID    int
	CreatedAt time.Time
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

// encodeSession stores the session as "<userID>|<createdAtUnix>".
func encodeSession(userID int, createdAt time.Time) string {
	return fmt.Sprintf("%d|%d", userID, createdAt.Unix())
}

func decodeSession(val string) (userID int, createdAt time.Time, err error) {
	userPart, createdPart, found := strings.Cut(val, "|")
	if !found {
		return 0, time.Time{}, ErrMalformedSession
	}
	userID, err = strconv.Atoi(userPart)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("%w: user id: %s", ErrMalformedSession, err)
	}
	createdAtUnix, err := strconv.ParseInt(createdPart, 10, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("%w: created at: %s", ErrMalformedSession, err)
	}
	return userID, time.Unix(createdAtUnix, 0), nil
}
