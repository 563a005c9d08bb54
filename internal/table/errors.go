package table

import (
	"errors"
	"fmt"
)

// ErrNoKeywordColumn indicates the input header lacks the keyword column.
var ErrNoKeywordColumn = errors.New("no " + KeywordColumn + " column in input")

// IOError reports a failure opening, creating, or replacing a file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError reports a row that could not be decoded. Line is 1-based and
// counts the header as line 1.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to read CSV row at line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
