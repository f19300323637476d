package common

import (
	"fmt"
	"regexp"
)

// NameFilter compiles a case-insensitive pattern into a matcher. An empty
// pattern matches everything.
func NameFilter(pattern string) (func(string) bool, error) {
	if pattern == "" {
		return func(string) bool { return true }, nil
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: bad filter %q: %w", ErrInvalidInput, pattern, err)
	}
	return re.MatchString, nil
}
