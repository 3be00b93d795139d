package classifier

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidVocabulary is returned when a vocabulary is neither a string
	// nor a list of strings.
	ErrInvalidVocabulary = errors.New("vocabulary must be a string or a list of strings")
	// ErrInvalidKeyword is returned for list elements that are not strings
	// or strings that are not valid UTF-8.
	ErrInvalidKeyword = errors.New("keyword must be a valid UTF-8 string")
	ErrEmptyLabel     = errors.New("label must not be empty")
	ErrDuplicateLabel = errors.New("duplicate label")
)

// CompileError reports an invalid dictionary entry
type CompileError struct {
	Label string
	Err   error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile dictionary: label %q: %v", e.Label, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }
