package repository

import "errors"

// Sentinel kinds for cache errors.
var (
	ErrNotFound     = errors.New("score vectors not cached")
	ErrCacheCorrupt = errors.New("score vector cache corrupt")
	ErrInvalidKey   = errors.New("invalid cache key")
)
