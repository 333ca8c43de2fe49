package contract

import (
	"errors"
	"fmt"
)

// Sentinels matched by errors.Is against a *ConditionViolation of the same kind.
var (
	ErrPrecondition  = errors.New("precondition violation")
	ErrPostcondition = errors.New("postcondition violation")
	ErrInvariant     = errors.New("invariant violation")
)

// ConditionViolation is raised when at least one clause of a guard group
// fails. Message lists every failing clause with its live values.
type ConditionViolation struct {
	Kind    Kind
	Message string
}

func NewPreconditionViolation(msg string) *ConditionViolation {
	return &ConditionViolation{Kind: Precondition, Message: msg}
}

func NewPostconditionViolation(msg string) *ConditionViolation {
	return &ConditionViolation{Kind: Postcondition, Message: msg}
}

func NewInvariantViolation(msg string) *ConditionViolation {
	return &ConditionViolation{Kind: Invariant, Message: msg}
}

// NewViolation builds a violation of kind k.
func NewViolation(k Kind, msg string) *ConditionViolation {
	return &ConditionViolation{Kind: k, Message: msg}
}

func (v *ConditionViolation) Error() string {
	return fmt.Sprintf("%s violated: %s", v.Kind, v.Message)
}

// Is matches the sentinel of the violation's kind.
func (v *ConditionViolation) Is(target error) bool {
	return target == v.sentinel()
}

func (v *ConditionViolation) sentinel() error {
	switch v.Kind {
	case Precondition:
		return ErrPrecondition
	case Postcondition:
		return ErrPostcondition
	case Invariant:
		return ErrInvariant
	}
	return nil
}

// InternalError is a failure of the contract machinery itself, as opposed
// to a failing clause: a missing old-values entry, an unresolved clause
// reaching run time, or an unbalanced scope stack.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string {
	return "contract internal error: " + e.Msg
}

// Internalf builds an *InternalError.
func Internalf(format string, args ...any) *InternalError {
	return &InternalError{Msg: fmt.Sprintf(format, args...)}
}
