package models

import "errors"

// Common errors used throughout the application
var (
	ErrEventNotFound        = errors.New("event not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrDiscountNotFound     = errors.New("discount code not found or invalid for selected module")
	ErrRegistrationClosed   = errors.New("registration is closed for this event")
	ErrDuplicateTeamName    = errors.New("this team is already registered for this event")
	ErrDuplicateMemberEmail = errors.New("a member email has already registered for this event")
	ErrUnknownModule        = errors.New("competition/module is not available for this event")
	ErrNoModules            = errors.New("please select at least one competition/module")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidTransition    = errors.New("payment status transition not allowed")
)
