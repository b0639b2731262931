package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Session binds an opaque identifier to a user and an expiry. The sid is
// what travels in the cookie; the payload stays server-side.
type Session struct {
	SID       string
	Payload   SessionPayload
	ExpiresAt time.Time
}

type SessionPayload struct {
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// MatchesUser compares the payload's owner against a claimed user id,
// string-compared after trimming so "42" and 42 agree.
func (s *Session) MatchesUser(claimed string) bool {
	claimed = strings.TrimSpace(claimed)
	if claimed == "" {
		return false
	}
	return strconv.FormatInt(s.Payload.UserID, 10) == claimed
}

func (p SessionPayload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

func UnmarshalSessionPayload(data []byte) (SessionPayload, error) {
	var p SessionPayload
	err := json.Unmarshal(data, &p)
	return p, err
}

// PasswordReset is the single live reset record per email. Only the
// token's hash is stored; the plaintext goes out in the email link.
type PasswordReset struct {
	Email     string
	TokenHash string
	ExpiresAt time.Time
}

func (r *PasswordReset) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
