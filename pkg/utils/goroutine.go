package utils

import (
	"fmt"
	"runtime/debug"
)

// GoSafe runs fn in a new goroutine and reports a recovered panic to onPanic.
func GoSafe(fn func(), onPanic func(recovered interface{}, stack []byte)) {
	go func() {
		defer func() {
			if r := recover(); r != nil && onPanic != nil {
				onPanic(r, debug.Stack())
			}
		}()
		fn()
	}()
}

// Recover runs fn and converts a panic into an error.
func Recover(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic recovered: %v\n%s", r, debug.Stack())
		}
	}()
	return fn()
}

// ToPointer returns a pointer to v.
func ToPointer[T any](v T) *T {
	return &v
}
