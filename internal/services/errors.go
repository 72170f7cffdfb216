package services

import (
	"fmt"
	"strings"
)

// ValidationError lists the required fields a submission left empty.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}
