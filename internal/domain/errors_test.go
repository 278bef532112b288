package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "ok"},
		{"invalid", fmt.Errorf("search: %w: capability is required", ErrInvalidArgument), "invalid"},
		{"not found", &NotFoundError{Capability: "web research"}, "not_found"},
		{"auth", &AuthError{Op: "connect", StatusCode: 401}, "auth"},
		{"protocol", &ProtocolError{Op: "search", Err: errors.New("bad json")}, "protocol"},
		{"transport status", &TransportError{Op: "search", StatusCode: 500}, "transport"},
		{"wrapped transport", fmt.Errorf("discover: %w", &TransportError{Op: "search", Err: context.DeadlineExceeded, Timeout: true}), "transport"},
		{"other", errors.New("boom"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Errorf("Kind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAuthErrorIsNotTransport(t *testing.T) {
	err := error(&AuthError{Op: "connect", StatusCode: 403})
	if errors.Is(err, ErrTransport) {
		t.Fatal("auth error must not match ErrTransport")
	}
	var ae *AuthError
	if !errors.As(err, &ae) || ae.StatusCode != 403 {
		t.Fatalf("expected AuthError with 403, got %v", err)
	}
}

func TestTransportErrorUnwrapsCause(t *testing.T) {
	err := &TransportError{Op: "search", Err: context.Canceled}
	if !errors.Is(err, context.Canceled) {
		t.Fatal("expected cause to be reachable through Unwrap")
	}
}

func TestNotFoundErrorMessage(t *testing.T) {
	err := &NotFoundError{Capability: "summarization"}
	if err.Error() != "no agent discovered for capability: summarization" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestIsAuthStatus(t *testing.T) {
	for _, code := range []int{401, 403} {
		if !IsAuthStatus(code) {
			t.Errorf("expected %d to be an auth status", code)
		}
	}
	for _, code := range []int{400, 404, 407, 429, 500} {
		if IsAuthStatus(code) {
			t.Errorf("expected %d not to be an auth status", code)
		}
	}
}

func TestProfileURL(t *testing.T) {
	if got := ProfileURL("https://www.agent-l.ink/", "scout-1"); got != "https://www.agent-l.ink/agents/scout-1" {
		t.Errorf("unexpected profile url: %s", got)
	}
}
