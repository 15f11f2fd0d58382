package permissions

import (
	"context"
	"errors"
	"testing"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
)

type statusStub struct {
	statuses map[int64]MemberStatus
	err      error
	calls    int
}

func (s *statusStub) GetMemberStatus(_ context.Context, _ int64, userID int64) (MemberStatus, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if status, ok := s.statuses[userID]; ok {
		return status, nil
	}
	return StatusMember, nil
}

func TestStatusOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		member *api.ChatMember
		want   MemberStatus
	}{
		{name: "nil", member: nil, want: StatusLeft},
		{name: "creator", member: &api.ChatMember{Status: "creator"}, want: StatusOwner},
		{name: "administrator", member: &api.ChatMember{Status: "administrator"}, want: StatusAdministrator},
		{name: "member", member: &api.ChatMember{Status: "member"}, want: StatusMember},
		{name: "restricted", member: &api.ChatMember{Status: "restricted"}, want: StatusRestricted},
		{name: "left", member: &api.ChatMember{Status: "left"}, want: StatusLeft},
		{name: "kicked", member: &api.ChatMember{Status: "kicked"}, want: StatusKicked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := StatusOf(tt.member); got != tt.want {
				t.Fatalf("StatusOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolverIsAdmin(t *testing.T) {
	t.Parallel()

	const chatID = -100
	tests := []struct {
		name    string
		subject Subject
		owner   int64
		want    bool
	}{
		{name: "anonymous-admin", subject: Subject{ChatID: chatID, SenderChatID: chatID}, want: true},
		{name: "admin-linked-channel", subject: Subject{ChatID: chatID, UserID: 777, SenderChatID: -200}, want: true},
		{name: "foreign-channel", subject: Subject{ChatID: chatID, UserID: 777, SenderChatID: -300}, want: false},
		{name: "owner", subject: Subject{ChatID: chatID, UserID: 5}, owner: 5, want: true},
		{name: "creator", subject: Subject{ChatID: chatID, UserID: 1}, want: true},
		{name: "administrator", subject: Subject{ChatID: chatID, UserID: 2}, want: true},
		{name: "member", subject: Subject{ChatID: chatID, UserID: 3}, want: false},
		{name: "no-user", subject: Subject{ChatID: chatID}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			stub := &statusStub{statuses: map[int64]MemberStatus{
				1:    StatusOwner,
				2:    StatusAdministrator,
				3:    StatusMember,
				-200: StatusAdministrator,
				-300: StatusLeft,
			}}
			resolver := NewResolver(stub, tt.owner, 16, time.Minute)
			got, err := resolver.IsAdmin(context.Background(), tt.subject)
			if err != nil {
				t.Fatalf("is admin: %v", err)
			}
			if got != tt.want {
				t.Fatalf("IsAdmin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolverCachesAndInvalidates(t *testing.T) {
	t.Parallel()

	stub := &statusStub{statuses: map[int64]MemberStatus{1: StatusAdministrator}}
	resolver := NewResolver(stub, 0, 16, time.Minute)
	subject := Subject{ChatID: -1, UserID: 1}

	for i := 0; i < 3; i++ {
		if ok, err := resolver.IsAdmin(context.Background(), subject); err != nil || !ok {
			t.Fatalf("is admin: ok=%v err=%v", ok, err)
		}
	}
	if stub.calls != 1 {
		t.Fatalf("expected a single lookup, got %d", stub.calls)
	}

	stub.statuses[1] = StatusMember
	resolver.Invalidate(-1, 1)
	if ok, _ := resolver.IsAdmin(context.Background(), subject); ok {
		t.Fatalf("expected demoted user after invalidation")
	}
}

func TestResolverPropagatesLookupError(t *testing.T) {
	t.Parallel()

	boom := errors.New("network down")
	resolver := NewResolver(&statusStub{err: boom}, 0, 16, time.Minute)
	ok, err := resolver.IsAdmin(context.Background(), Subject{ChatID: -1, UserID: 9})
	if ok || !errors.Is(err, boom) {
		t.Fatalf("expected lookup error, got ok=%v err=%v", ok, err)
	}
}
