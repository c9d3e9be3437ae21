package errors

import (
	"fmt"
	"strings"
)

// ParseError represents a configuration parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures configuration validation issues.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// TokenConfigError reports a registration request that was rejected before any mutation.
type TokenConfigError struct {
	Token   string
	Message string
	Err     error
}

// NewTokenConfigError constructs a TokenConfigError.
func NewTokenConfigError(token, message string, err error) error {
	return &TokenConfigError{Token: token, Message: message, Err: err}
}

func (e *TokenConfigError) Error() string {
	if e == nil {
		return ""
	}
	if e.Token != "" {
		return fmt.Sprintf("invalid token config [%s]: %s", e.Token, e.Message)
	}
	return fmt.Sprintf("invalid token config: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *TokenConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// CycleError indicates that a generates edge would make a token derive from itself.
type CycleError struct {
	Token string
	Path  []string
}

// NewCycleError constructs a CycleError for the offending token and the detected path.
func NewCycleError(token string, path []string) error {
	return &CycleError{Token: token, Path: append([]string(nil), path...)}
}

func (e *CycleError) Error() string {
	if e == nil {
		return ""
	}
	if len(e.Path) > 0 {
		return fmt.Sprintf("cyclic relationship on %s: %s", e.Token, strings.Join(e.Path, " -> "))
	}
	return fmt.Sprintf("cyclic relationship on %s", e.Token)
}

// GenerationError represents a derivation that could not compute a dependent value.
type GenerationError struct {
	Token       string
	GeneratorID string
	Err         error
}

// NewGenerationError constructs a GenerationError.
func NewGenerationError(token, generatorID string, err error) error {
	return &GenerationError{Token: token, GeneratorID: generatorID, Err: err}
}

func (e *GenerationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Token != "" {
		return fmt.Sprintf("generation failed for %s [%s]: %v", e.Token, e.GeneratorID, e.Err)
	}
	return fmt.Sprintf("generation failed [%s]: %v", e.GeneratorID, e.Err)
}

// Unwrap exposes the root error.
func (e *GenerationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// TokenNotFoundError is returned when an operation names a token the registry does not hold.
type TokenNotFoundError struct {
	Token string
}

// NewTokenNotFoundError constructs a TokenNotFoundError.
func NewTokenNotFoundError(token string) error {
	return &TokenNotFoundError{Token: token}
}

func (e *TokenNotFoundError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("token not found: %s", e.Token)
}
