package game

import (
	"errors"
	"fmt"
)

// Code classifies why an action was rejected.
type Code string

const (
	CodeInvalidPlay    Code = "INVALID_PLAY"
	CodeNotYourTurn    Code = "NOT_YOUR_TURN"
	CodeUnknownPlayer  Code = "UNKNOWN_PLAYER"
	CodePromptMismatch Code = "PROMPT_MISMATCH"
)

// RuleError is returned when an action is rejected. A rejected action never
// changes the state.
type RuleError struct {
	Code    Code
	Message string
}

func (e *RuleError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return string(e.Code) + ": " + e.Message
}

// Is matches any RuleError sentinel with the same code.
func (e *RuleError) Is(target error) bool {
	t, ok := target.(*RuleError)
	return ok && t.Message == "" && t.Code == e.Code
}

var (
	ErrInvalidPlay    = &RuleError{Code: CodeInvalidPlay}
	ErrNotYourTurn    = &RuleError{Code: CodeNotYourTurn}
	ErrUnknownPlayer  = &RuleError{Code: CodeUnknownPlayer}
	ErrPromptMismatch = &RuleError{Code: CodePromptMismatch}
)

func ruleErrorf(code Code, format string, args ...any) error {
	return &RuleError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the rejection code from err, or "" if err is not a
// RuleError.
func CodeOf(err error) Code {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}
