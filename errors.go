package main

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidValue = errors.New("invalid value")
	ErrOutOfRange   = errors.New("value out of range")
)

// ConfigErr ties a configuration error to the key that caused it.
type ConfigErr struct {
	Key string
	Err error
}

func (e ConfigErr) Error() string {
	if e.Key == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("config %s: %s", e.Key, e.Err)
}

func (e ConfigErr) Unwrap() error { return e.Err }

func makeConfigErr(key string, err error) ConfigErr {
	if wrappedErr, ok := err.(ConfigErr); ok {
		return wrappedErr
	}
	return ConfigErr{Key: key, Err: err}
}
