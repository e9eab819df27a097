package domain

import "time"

// Permission scopes understood by the tutorial API.
const (
	ScopeMe    = "me"
	ScopeItems = "items"
)

// Token describes an issued access token.
type Token struct {
	Value     string
	Subject   string
	Scopes    []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
