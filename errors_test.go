package main

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigErr(t *testing.T) {
	t.Parallel()

	err := makeConfigErr("fps", fmt.Errorf("%w: %d", ErrOutOfRange, -1))
	if got, want := err.Error(), "config fps: value out of range: -1"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("errors.Is(%v, ErrOutOfRange) = false", err)
	}

	rewrapped := makeConfigErr("other", err)
	if rewrapped.Key != "fps" {
		t.Errorf("makeConfigErr rewrapped key = %q, want fps", rewrapped.Key)
	}

	bare := ConfigErr{Err: ErrInvalidValue}
	if bare.Error() != ErrInvalidValue.Error() {
		t.Errorf("keyless Error() = %q", bare.Error())
	}
}
