package domain

import "errors"

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when a request is missing required fields or
// references an entity that cannot be used (e.g. a deleted topic).
// Nothing is persisted when a validation error is returned.
var ErrValidation = errors.New("invalid input")

// ErrUpstreamAsset is returned when the Asset Store is unavailable or rejects
// an upload. The owning entity is left unchanged.
var ErrUpstreamAsset = errors.New("asset store upload failed")
