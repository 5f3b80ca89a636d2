package commonerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestDomainError_WithCausePreservesIdentity(t *testing.T) {
	wrapped := ErrDatabaseError.WithCause(fmt.Errorf("connection reset"))

	if !errors.Is(wrapped, ErrDatabaseError) {
		t.Error("wrapped copy must still match its catalogue original")
	}
	if errors.Is(wrapped, ErrInternalError) {
		t.Error("wrapped copy must not match a different catalogue error")
	}
	if wrapped.Error() != "database operation failed: connection reset" {
		t.Errorf("Error() = %q", wrapped.Error())
	}
	if wrapped.Message() != ErrDatabaseError.Message() {
		t.Error("message must not include the cause")
	}
}

func TestWithDetails(t *testing.T) {
	base := NewDomainError("VALIDATION_FAILED", CategoryValidation, http.StatusBadRequest, "request validation failed")
	detailed := WithDetails(base, "title is required", "duration must not be negative")

	if !errors.Is(detailed, base) {
		t.Error("detailed copy must still match the original")
	}
	got := Details(detailed)
	if len(got) != 2 || got[0] != "title is required" {
		t.Errorf("Details = %v", got)
	}
	if Details(base) != nil {
		t.Error("the original must stay detail-free")
	}
}

func TestDetails_FindsThroughWrapping(t *testing.T) {
	detailed := WithDetails(ErrUserNotFound, "no such account")
	wrapped := fmt.Errorf("resolving channel: %w", detailed)

	got := Details(wrapped)
	if len(got) != 1 || got[0] != "no such account" {
		t.Errorf("Details through fmt.Errorf = %v", got)
	}
	if Details(errors.New("plain")) != nil {
		t.Error("plain errors carry no details")
	}
}

func TestAsDomainError(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", ErrVideoNotFound)

	de, ok := AsDomainError(wrapped)
	if !ok {
		t.Fatal("expected a domain error in the chain")
	}
	if de.Code() != "VIDEO_NOT_FOUND" || de.HTTPStatus() != http.StatusNotFound {
		t.Errorf("unexpected domain error: %s / %d", de.Code(), de.HTTPStatus())
	}

	if _, ok := AsDomainError(errors.New("plain")); ok {
		t.Error("plain error must not be a domain error")
	}
}
