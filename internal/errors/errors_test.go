package errors

import (
	"strings"
	"testing"
)

func TestMissingClosingBraceMessageIsStable(t *testing.T) {
	t.Parallel()

	err := WithDetailf(ErrMissingClosingBrace, "tag text: %s", "{number")
	if err.Error() != "Missing closing '}'" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !IsSyntaxError(err) {
		t.Error("IsSyntaxError = false, want true")
	}
	if IsConfigError(err) {
		t.Error("IsConfigError = true, want false")
	}
}

func TestNewConfigError(t *testing.T) {
	t.Parallel()

	err := NewConfigError("directory %q does not exist", "src")
	if !IsConfigError(err) {
		t.Fatal("IsConfigError = false, want true")
	}
	if !strings.Contains(err.Error(), `directory "src" does not exist`) {
		t.Errorf("Error() = %q", err.Error())
	}
	if IsConfigError(nil) {
		t.Error("IsConfigError(nil) = true")
	}
}
