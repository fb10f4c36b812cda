package models

import "time"

// Profile is the local identity a quiz history hangs off.
//
// Profiles come from two namespaces. Local profiles are picked by username
// and selected with a cookie. Token-bound profiles carry the subject of a
// verified bearer token and are reachable only with such a token.
type Profile struct {
	ID              int64     `json:"id" db:"id"`
	Username        string    `json:"username" db:"username"`
	ExternalSubject *string   `json:"-" db:"external_subject"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// TokenBound reports whether p belongs to a bearer-token subject.
func (p Profile) TokenBound() bool {
	return p.ExternalSubject != nil
}
