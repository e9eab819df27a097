package domain

// Account is an entry of the tutorial API's fixed credential table.
type Account struct {
	Username       string
	Email          string
	FullName       string
	Disabled       bool
	HashedPassword string
	// Scopes lists what a token for this account may be granted.
	Scopes []string
}

// Active reports whether the account may be admitted.
func (a *Account) Active() bool {
	return a != nil && !a.Disabled
}
