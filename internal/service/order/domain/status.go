package domain

// Status is the lifecycle state of an order aggregate. Only the
// Created -> Cancelled transition is defined today.
type Status string

const (
	StatusCreated   Status = "Created"
	StatusCancelled Status = "Cancelled"
)
