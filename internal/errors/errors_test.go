package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestPlatformActionErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		err           error
		wantPrivilege bool
	}{
		{name: "plain", err: errors.New("Bad Request: message to delete not found")},
		{name: "rights", err: errors.New("Bad Request: not enough rights to restrict/unrestrict chat member"), wantPrivilege: true},
		{name: "admin-required", err: errors.New("Bad Request: CHAT_ADMIN_REQUIRED"), wantPrivilege: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := fmt.Errorf("wrapped: %w", PlatformAction("restrict", tt.err))
			if !errors.Is(err, ErrPlatformActionFailed) {
				t.Fatalf("expected platform action failure, got %v", err)
			}
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected underlying error to be preserved")
			}
			if got := errors.Is(err, ErrNoPrivileges); got != tt.wantPrivilege {
				t.Fatalf("privilege classification: got %v want %v", got, tt.wantPrivilege)
			}
			if Reason(err) != tt.err.Error() {
				t.Fatalf("unexpected reason: %q", Reason(err))
			}
		})
	}
}

func TestStorageErrorIsClassified(t *testing.T) {
	t.Parallel()

	cause := errors.New("database is locked")
	err := Storage("increment", cause)
	if !errors.Is(err, ErrStorage) || !errors.Is(err, cause) {
		t.Fatalf("unexpected classification for %v", err)
	}
	if Storage("noop", nil) != nil {
		t.Fatalf("expected nil for nil cause")
	}
	if PlatformAction("noop", nil) != nil {
		t.Fatalf("expected nil for nil cause")
	}
}
