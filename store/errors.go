package store

import "errors"

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("key not found")
