package repository

import "errors"

// ErrNotFound is returned by every backend when the addressed record is absent.
var ErrNotFound = errors.New("record not found")
