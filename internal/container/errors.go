package container

import (
	"errors"
	"fmt"
)

// NotFoundError reports a required data product or field missing from a
// bundle. It aborts the load of the session it occurs in; optional products
// never produce it.
type NotFoundError struct {
	Path    string // bundle path
	Product string // required product or field name
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("required product %s not found in %s", e.Product, e.Path)
}

// IsNotFound reports whether err wraps a missing required product error.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
