package dto

import "github.com/spec-kit/tutorial-service/internal/domain"

// UserCreate is the body of POST /users/.
type UserCreate struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ItemCreate is the body of POST /users/{user_id}/items/.
type ItemCreate struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// ItemResponse is an item as stored.
type ItemResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	OwnerID     int64   `json:"owner_id"`
}

// UserResponse is a user with owned items and without the password hash.
type UserResponse struct {
	ID       int64          `json:"id"`
	Email    string         `json:"email"`
	IsActive bool           `json:"is_active"`
	Items    []ItemResponse `json:"items"`
}

// NoteIn is the body of POST /notes/.
type NoteIn struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// NoteResponse is a stored note.
type NoteResponse struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// NewItemResponse maps a domain item.
func NewItemResponse(i domain.Item) ItemResponse {
	return ItemResponse{ID: i.ID, Title: i.Title, Description: i.Description, OwnerID: i.OwnerID}
}

// NewItemResponses maps a list, never returning nil.
func NewItemResponses(items []domain.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, i := range items {
		out = append(out, NewItemResponse(i))
	}
	return out
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, IsActive: u.IsActive, Items: NewItemResponses(u.Items)}
}

// NewUserResponses maps a list, never returning nil.
func NewUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}

// NewNoteResponses maps a list, never returning nil.
func NewNoteResponses(notes []domain.Note) []NoteResponse {
	out := make([]NoteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, NoteResponse{ID: n.ID, Text: n.Text, Completed: n.Completed})
	}
	return out
}
