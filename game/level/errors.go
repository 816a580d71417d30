package level

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnreadable = errors.New("level file unreadable")
	ErrMalformed  = errors.New("malformed level")
	ErrUnresolved = errors.New("unresolved references")
)

// LoadError describes why a level could not be loaded
type LoadError struct {
	// Path is the file being loaded; empty for in-memory documents
	Path string
	// Node is the id of the element being parsed when the error occurred
	Node string
	// Unresolved lists referenced ids that never appeared, in the order
	// they were first referenced
	Unresolved []string
	Err        error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString("load level")
	if e.Path != "" {
		fmt.Fprintf(&b, " %s", e.Path)
	}
	if e.Node != "" {
		fmt.Fprintf(&b, " (node %q)", e.Node)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	if len(e.Unresolved) > 0 {
		fmt.Fprintf(&b, ": %s", strings.Join(e.Unresolved, ", "))
	}
	return b.String()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
