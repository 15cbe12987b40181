package entity

import "errors"

var (
	ErrIncompleteSubmission = errors.New("incomplete submission")
	ErrInvalidEmail         = errors.New("invalid email format")
)

var (
	ErrTransportNotConfigured = errors.New("email transport not configured")
	ErrDispatchFailed         = errors.New("dispatch failed")
)
