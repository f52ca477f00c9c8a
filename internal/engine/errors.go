package engine

import "fmt"

// UnknownTypeError reports a primitive TypeName missing from a backend's
// type table.
type UnknownTypeError struct {
	Backend  string
	TypeName string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("engine: %s has no mapping for primitive type %q", e.Backend, e.TypeName)
}
