package database

import "errors"

// ErrNotFound is returned when a database file that must already exist is missing.
var ErrNotFound = errors.New("database not found")
