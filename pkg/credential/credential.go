// Package credential resolves the API bearer token from the environment.
package credential

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"
)

// DefaultEnv is the environment variable holding the xAI API key.
const DefaultEnv = "XAI_API_KEY"

// Failure kinds. Match them with errors.Is.
var (
	ErrMissing = errors.New("not set")
	ErrNotText = errors.New("not valid UTF-8")
	ErrEmpty   = errors.New("set but empty")
)

// Error reports why the variable Name could not be used.
type Error struct {
	Name string
	Kind error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %v", e.Name, e.Kind)
}

func (e *Error) Unwrap() error { return e.Kind }

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Resolve reads the credential from the process environment.
func Resolve(name string) (string, error) {
	return ResolveWith(os.LookupEnv, name)
}

// ResolveWith reads the credential through lookup. The value is not
// trimmed: only an exactly empty value counts as empty.
func ResolveWith(lookup LookupFunc, name string) (string, error) {
	v, ok := lookup(name)
	if !ok {
		return "", &Error{Name: name, Kind: ErrMissing}
	}
	if !utf8.ValidString(v) {
		return "", &Error{Name: name, Kind: ErrNotText}
	}
	if v == "" {
		return "", &Error{Name: name, Kind: ErrEmpty}
	}
	return v, nil
}
