package repository

import "errors"

// ErrNotFound is returned when a lookup by key matches nothing.
var ErrNotFound = errors.New("record not found")
