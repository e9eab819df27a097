package domain

// User is a record of the directory service. Items are loaded with the owner.
type User struct {
	ID             int64
	Email          string
	HashedPassword string
	IsActive       bool
	Items          []Item
}

// Item belongs to a User through OwnerID. The owner is not verified on insert.
type Item struct {
	ID          int64
	Title       string
	Description *string
	OwnerID     int64
}

// Note is stored through the process-wide pool rather than a request session.
type Note struct {
	ID        int64
	Text      string
	Completed bool
}
