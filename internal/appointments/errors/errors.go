package errors

import "errors"

var (
	ErrNotFound = errors.New("appointment not found")

	ErrInvalidID = errors.New("invalid appointment ID format")

	// ErrSlotTaken is returned when the unique active-slot index rejects a write.
	ErrSlotTaken = errors.New("time slot already held by an active appointment")

	// ErrSlotLocked is returned when another request holds the advisory lock.
	ErrSlotLocked = errors.New("time slot is locked by a concurrent booking")

	// ErrStatusChanged is returned when a write finds the appointment in a
	// different status than the one it was read with.
	ErrStatusChanged = errors.New("appointment status changed since it was read")
)
