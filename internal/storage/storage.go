// Package storage holds what the sqlite and postgres stores share.
package storage

import "errors"

// ErrNotFound is returned when no session state has been saved yet.
var ErrNotFound = errors.New("not found")
