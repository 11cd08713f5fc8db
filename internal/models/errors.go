package models

import "strings"

// ValidationErrors collects every problem found in a draft, in the order
// the checks ran.
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	return strings.Join(v, "; ")
}

func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
