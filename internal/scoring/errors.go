package scoring

import "fmt"

// InputError indicates the scorer received malformed input, e.g. an empty
// job description. Fatal before scoring; never converted into a default score.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("scoring input error: %s", e.Reason)
}
