package domain

import "errors"

// ErrBusy is returned when a play request arrives while an instance of the
// same family is already running. Callers that want the classic silent no-op
// simply ignore it.
var ErrBusy = errors.New("sequence already playing")

// ErrUnknownSequence is returned when no definition is registered for the
// requested family.
var ErrUnknownSequence = errors.New("unknown sequence family")

// ErrInvalidPayload is returned when a play payload cannot be decoded onto
// the theme's defaults. It is surfaced to the triggering client only, never
// broadcast.
var ErrInvalidPayload = errors.New("invalid payload")

// ErrPresetNotFound is returned when a named preset is absent from the
// settings store.
var ErrPresetNotFound = errors.New("preset not found")
