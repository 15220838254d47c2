package services

import "errors"

var (
	// ErrEmptySwap rejects a swap that moves neither items nor money.
	ErrEmptySwap = errors.New("swap moves nothing")
	// ErrInvalidAmount rejects negative or non-positive money amounts.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrItemsNotFound means at least one referenced item is missing or
	// belongs to another user. The two cases are deliberately
	// indistinguishable to the caller.
	ErrItemsNotFound = errors.New("items not found or not owned")
	// ErrInsufficientFunds means the wallet balance cannot cover the
	// requested outflow.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrNoItems rejects a submit or redeem with an empty item list.
	ErrNoItems = errors.New("no items given")
)
