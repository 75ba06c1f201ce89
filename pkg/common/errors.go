package common

import "errors"

// AsError is errors.As returning the match instead of filling a target.
func AsError[T error](err error) (T, bool) {
	var target T
	return target, errors.As(err, &target)
}
