package core

import "fmt"

// Error codes for domain errors.
const (
	ErrCodeMissingField      = "missing_field"
	ErrCodeNameTaken         = "name_taken"
	ErrCodeAlreadyRegistered = "already_registered"
	ErrCodeNotRegistered     = "not_registered"
	ErrCodeRoomNotFound      = "room_not_found"
	ErrCodeRoomExists        = "room_exists"
	ErrCodeNotInRoom         = "not_in_room"
	ErrCodeEmptyText         = "empty_text"
	ErrCodeUnknownAction     = "unknown_action"
	ErrCodeInvalidPayload    = "invalid_payload"
)

var (
	ErrNameTaken         = coreError(ErrCodeNameTaken, "Username taken")
	ErrAlreadyRegistered = coreError(ErrCodeAlreadyRegistered, "Already registered")
	ErrNotRegistered     = coreError(ErrCodeNotRegistered, "Register first")
	ErrRoomNotFound      = coreError(ErrCodeRoomNotFound, "Room not found")
	ErrRoomExists        = coreError(ErrCodeRoomExists, "Room exists")
	ErrNotInRoom         = coreError(ErrCodeNotInRoom, "Not in a room")
	ErrEmptyText         = coreError(ErrCodeEmptyText, "Empty message")
	ErrInvalidPayload    = coreError(ErrCodeInvalidPayload, "Invalid JSON")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so errors.Is works for
// both sentinels and errors built with a field-specific message.
func (e *CoreError) Is(target error) bool {
	t, ok := target.(*CoreError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

func missingField(field string) *CoreError {
	return coreError(ErrCodeMissingField, fmt.Sprintf("Missing '%s'", field))
}

func unknownAction(action string) *CoreError {
	return coreError(ErrCodeUnknownAction, fmt.Sprintf("Unknown action '%s'", action))
}
