package jsonfile

import (
	"errors"
	"fmt"
)

// Failure kinds. Match them with errors.Is.
var (
	ErrIO                  = errors.New("cache i/o error")
	ErrParse               = errors.New("cache parse error")
	ErrHomeDirUnresolvable = errors.New("couldn't determine home directory")
	ErrNotText             = errors.New("cache text is not valid UTF-8")
)

// Error describes a failed cache operation on Path.
type Error struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("%v: %s %s: %v", e.Kind, e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
