package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMessageIncludesWrappedCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(CodeStorageError, "failed to save pain record", cause)

	if err.Error() != "failed to save pain record: disk full" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to be found with errors.Is")
	}
}

func TestHasCodeMatchesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("import pipeline: %w", New(CodeInvalidImportFormat, "invalid import data format"))

	if !HasCode(err, CodeInvalidImportFormat) {
		t.Fatalf("expected INVALID_IMPORT_FORMAT in chain")
	}
	if HasCode(err, CodeNotFound) {
		t.Fatalf("did not expect NOT_FOUND in chain")
	}
	if HasCode(errors.New("plain"), CodeNotFound) {
		t.Fatalf("plain errors must not match any code")
	}
}

func TestCodeOfReturnsEmptyForPlainErrors(t *testing.T) {
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Fatalf("expected empty code, got %q", got)
	}
	if got := CodeOf(New(CodeDuplicateRecord, "duplicate record detected")); got != CodeDuplicateRecord {
		t.Fatalf("expected DUPLICATE_RECORD, got %q", got)
	}
}

func TestWithDetailsKeepsCodeAndMessage(t *testing.T) {
	err := New(CodeValidationFailed, "record validation failed").WithDetails([]string{"Pain level must be between 0 and 10"})

	if err.Code != CodeValidationFailed {
		t.Fatalf("unexpected code %q", err.Code)
	}
	details, ok := err.Details.([]string)
	if !ok || len(details) != 1 {
		t.Fatalf("unexpected details: %#v", err.Details)
	}
}
