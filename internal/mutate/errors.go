package mutate

import "fmt"

// NotFoundError is what callers that need to report a miss (the CLI) return.
// The mutations themselves treat unknown ids as a no-op.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}
