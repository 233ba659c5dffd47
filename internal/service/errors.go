package service

import "errors"

// Common service errors
var (
	// ErrPermissionDenied is returned when a user doesn't have permission for an action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidTransition is returned when an amendment cannot move from its
	// current workflow state to the requested one
	ErrInvalidTransition = errors.New("invalid workflow transition")

	// ErrAmendmentTerminal is returned when mutating an amendment in a
	// terminal state (approved, rejected, cancelled)
	ErrAmendmentTerminal = errors.New("amendment is in a terminal state")

	// ErrItemAlreadyResolved is returned when re-resolving a configured item;
	// resolution is one-way and only revision requests clear it
	ErrItemAlreadyResolved = errors.New("item already resolved")

	// ErrRejectionNeedsNotes is returned when an item is rejected without
	// reviewer notes
	ErrRejectionNeedsNotes = errors.New("rejection requires notes")

	// ErrItemsUnresolved is returned when completing a review while items
	// remain pending
	ErrItemsUnresolved = errors.New("review has unresolved items")

	// ErrNoApprovedItems is returned when sending an amendment whose items
	// were all rejected
	ErrNoApprovedItems = errors.New("amendment has no approved items")

	// ErrDiscountRequiresApproval is returned when sending to the client with
	// a discount above the commercial-approval threshold
	ErrDiscountRequiresApproval = errors.New("discount requires commercial approval")

	// ErrDiscountCeiling is returned when a discount exceeds the absolute ceiling
	ErrDiscountCeiling = errors.New("discount exceeds absolute ceiling")

	// ErrReplacementConflict is returned when an added upgrade collides with
	// one already on the contract and the conflict was not acknowledged
	ErrReplacementConflict = errors.New("unacknowledged replacement conflict")

	// ErrLegacyAmendment is returned when running workflow operations on an
	// imported amendment that predates the workflow
	ErrLegacyAmendment = errors.New("amendment predates the approval workflow")
)
