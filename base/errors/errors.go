// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errors provides helpers for logging and handling errors,
// and re-exports the standard library errors functions so that
// it can be used as a drop-in replacement.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
)

// Log logs the given error if it is non-nil, along with the
// file and line of the caller, and returns it unchanged.
// It is typically used as `if errors.Log(err) != nil { return err }`.
func Log(err error) error {
	if err != nil {
		slog.Error(err.Error() + " | " + CallerInfo())
	}
	return err
}

// Log1 logs the given error if it is non-nil, and returns
// the value regardless.
func Log1[T any](v T, err error) T {
	if err != nil {
		slog.Error(err.Error() + " | " + CallerInfo())
	}
	return v
}

// Must panics if the given error is non-nil.
func Must(err error) {
	if err != nil {
		panic(err)
	}
}

// Must1 panics if the given error is non-nil, and otherwise
// returns the value.
func Must1[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// Ignore1 ignores an error return value for a function returning
// a value and an error.
func Ignore1[T any](v T, err error) T {
	return v
}

// CallerInfo returns the file and line of the function that
// called the function calling CallerInfo.
func CallerInfo() string {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return "unknown caller"
	}
	return file + ":" + strconv.Itoa(line)
}

// Errorf is [fmt.Errorf], here for convenience.
func Errorf(format string, a ...any) error {
	return fmt.Errorf(format, a...)
}

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// As is [errors.As].
func As(err error, target any) bool { return errors.As(err, target) }

// Unwrap is [errors.Unwrap].
func Unwrap(err error) error { return errors.Unwrap(err) }

// ErrUnsupported is [errors.ErrUnsupported].
var ErrUnsupported = errors.ErrUnsupported
