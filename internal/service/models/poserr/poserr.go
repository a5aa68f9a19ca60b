// Package poserr holds the sentinel errors shared by services and transports.
package poserr

import "errors"

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrTableNotFound     = errors.New("table not found")
	ErrTableExists       = errors.New("table with this number already exists")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrInvalidTransition = errors.New("status transition is not allowed")
	ErrEmptyOrder        = errors.New("order must contain at least one item")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInvalidPrice      = errors.New("price must not be negative")
)
