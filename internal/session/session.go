// Package session classifies the current actor and issues session tokens.
package session

import (
	"strconv"
	"strings"

	"cartsync/internal/domain"
)

// GuestPrefix marks synthetic guest ids. Only ids carrying this prefix
// classify as guests; everything else must resolve to a numeric account.
const GuestPrefix = "guest-"

// Session is the identity input supplied by the auth collaborator.
type Session struct {
	ID string
}

// Identity is the resolved classification of a Session.
type Identity struct {
	Guest   bool
	GuestID string
	UserID  int64
}

// Resolve classifies a session as guest or authenticated. A session whose
// id is neither a guest sentinel nor coercible to a numeric account id is
// reported as unlinked; callers must surface that instead of silently
// treating the actor as a guest and dropping writes.
func Resolve(s Session) (Identity, error) {
	id := strings.TrimSpace(s.ID)
	if strings.HasPrefix(id, GuestPrefix) {
		return Identity{Guest: true, GuestID: id}, nil
	}
	if n, err := strconv.ParseInt(id, 10, 64); err == nil && n > 0 {
		return Identity{UserID: n}, nil
	}
	return Identity{}, domain.ErrUnlinkedAccount
}
