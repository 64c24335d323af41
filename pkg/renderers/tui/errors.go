package tui

import "errors"

var (
	// ErrAborted is returned when the member interrupts a prompt.
	ErrAborted = errors.New("tui: fill aborted")
	// ErrDeclined is returned when the member refuses the signature statement.
	ErrDeclined = errors.New("tui: signature declined")
)
