package dto

import "github.com/spec-kit/tutorial-service/internal/domain"

// TokenResponse is returned by POST /token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserIn is the body of POST /user/.
type UserIn struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	FullName *string `json:"full_name"`
	Disabled *bool   `json:"disabled"`
	Password string  `json:"password"`
}

// Account converts the payload, leaving the password out.
func (u UserIn) Account() domain.Account {
	a := domain.Account{Username: u.Username, Email: u.Email}
	if u.FullName != nil {
		a.FullName = *u.FullName
	}
	if u.Disabled != nil {
		a.Disabled = *u.Disabled
	}
	return a
}

// UserOut never carries credentials.
type UserOut struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	FullName *string `json:"full_name"`
	Disabled *bool   `json:"disabled"`
}

// NewUserOut maps an account to its public view.
func NewUserOut(a *domain.Account) UserOut {
	out := UserOut{Username: a.Username, Email: a.Email}
	if a.FullName != "" {
		fullName := a.FullName
		out.FullName = &fullName
	}
	disabled := a.Disabled
	out.Disabled = &disabled
	return out
}

// Image is attached to an Item.
type Image struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Item is the catalog payload of the tutorial API.
type Item struct {
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Price       float64  `json:"price"`
	Tax         *float64 `json:"tax"`
	Tags        []string `json:"tags"`
	Images      []Image  `json:"images"`
}

// Normalize treats Tags as a set: duplicates collapse to their first
// occurrence and an absent list becomes empty.
func (i *Item) Normalize() {
	tags := make([]string, 0, len(i.Tags))
	seen := make(map[string]struct{}, len(i.Tags))
	for _, t := range i.Tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	i.Tags = tags
}

// ItemRef is the short item form used by listings.
type ItemRef struct {
	ItemID string `json:"item_id"`
	Owner  string `json:"owner,omitempty"`
}

// ModelResponse answers GET /model/{model_name}.
type ModelResponse struct {
	ModelName domain.ModelName `json:"model_name"`
	Message   string           `json:"message"`
}
