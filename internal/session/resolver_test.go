package session_test

import (
	"errors"
	"testing"

	"github.com/gemiluxvii/cloudrank/internal/session"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{
			name:     "canonical group id",
			input:    "telegram_group_142443871",
			expected: "telegram_group_142443871",
		},
		{
			name:     "canonical group id with mixed case platform",
			input:    "Telegram_group_142443871",
			expected: "telegram_group_142443871",
		},
		{
			name:     "legacy three part group id",
			input:    "aiocqhttp:GroupMessage:142443871",
			expected: "aiocqhttp_group_142443871",
		},
		{
			name:     "legacy three part group id with zero prefix",
			input:    "aiocqhttp:GroupMessage:0_142443871",
			expected: "aiocqhttp_group_142443871",
		},
		{
			name:     "legacy channel id",
			input:    "discord:channel:99887766",
			expected: "discord_group_99887766",
		},
		{
			name:     "private id",
			input:    "telegram:private:12345",
			expected: "telegram:private:12345",
		},
		{
			name:     "legacy friend message id",
			input:    "aiocqhttp:FriendMessage:12345",
			expected: "aiocqhttp:private:12345",
		},
		{
			name:     "bare numeric id",
			input:    "142443871",
			expected: "telegram_group_142443871",
		},
		{
			name:     "surrounding whitespace",
			input:    "  telegram_group_42  ",
			expected: "telegram_group_42",
		},
		{
			name:    "empty identifier",
			input:   "",
			wantErr: true,
		},
		{
			name:    "whitespace only",
			input:   "   ",
			wantErr: true,
		},
		{
			name:    "group id with non numeric target",
			input:   "telegram_group_abc",
			wantErr: true,
		},
		{
			name:    "unknown conversation kind",
			input:   "telegram:Broadcast:12345",
			wantErr: true,
		},
		{
			name:    "too many segments",
			input:   "a:b:c:d",
			wantErr: true,
		},
		{
			name:    "free text",
			input:   "not a session",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := session.Resolve(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Resolve(%q) = %q, want error", tc.input, got)
				}
				if !errors.Is(err, session.ErrInvalidIdentifier) {
					t.Fatalf("Resolve(%q) error = %v, want ErrInvalidIdentifier", tc.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) unexpected error: %v", tc.input, err)
			}
			if got != tc.expected {
				t.Fatalf("Resolve(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestResolveIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"aiocqhttp:GroupMessage:0_142443871",
		"telegram_group_42",
		"12345",
		"telegram:private:777",
	}

	for _, input := range inputs {
		first, err := session.Resolve(input)
		if err != nil {
			t.Fatalf("Resolve(%q) unexpected error: %v", input, err)
		}
		second, err := session.Resolve(input)
		if err != nil {
			t.Fatalf("Resolve(%q) second pass unexpected error: %v", input, err)
		}
		if first != second {
			t.Fatalf("Resolve(%q) not deterministic: %q vs %q", input, first, second)
		}

		// Resolving an already canonical id must be a fixed point.
		again, err := session.Resolve(first)
		if err != nil {
			t.Fatalf("Resolve(%q) of canonical id unexpected error: %v", first, err)
		}
		if again != first {
			t.Fatalf("Resolve(%q) of canonical id = %q, want unchanged", first, again)
		}
	}
}

func TestResolveDoesNotMergeDistinctConversations(t *testing.T) {
	t.Parallel()

	a, err := session.Resolve("telegram_group_100")
	if err != nil {
		t.Fatal(err)
	}
	b, err := session.Resolve("telegram_group_101")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatalf("distinct conversations resolved to the same id %q", a)
	}

	group, err := session.Resolve("telegram_group_100")
	if err != nil {
		t.Fatal(err)
	}
	private, err := session.Resolve("telegram:private:100")
	if err != nil {
		t.Fatal(err)
	}
	if group == private {
		t.Fatalf("group and private conversations with the same number merged into %q", group)
	}
}

func TestGroupAndPrivateIDs(t *testing.T) {
	t.Parallel()

	if got := session.GroupID("telegram", 42); got != "telegram_group_42" {
		t.Fatalf("GroupID = %q", got)
	}
	if got := session.GroupID("", 42); got != "telegram_group_42" {
		t.Fatalf("GroupID with empty platform = %q", got)
	}
	if got := session.PrivateID("telegram", 7); got != "telegram:private:7" {
		t.Fatalf("PrivateID = %q", got)
	}
}

func TestChatID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sessionID string
		want      int64
		wantErr   bool
	}{
		{sessionID: "telegram_group_42", want: 42},
		{sessionID: "telegram_group_-100123456", want: -100123456},
		{sessionID: "telegram:private:7", want: 7},
		{sessionID: "not-a-session", wantErr: true},
		{sessionID: "telegram_group_abc", wantErr: true},
	}

	for _, tt := range tests {
		got, err := session.ChatID(tt.sessionID)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ChatID(%q) succeeded, want error", tt.sessionID)
			}
			continue
		}
		if err != nil {
			t.Errorf("ChatID(%q) failed: %v", tt.sessionID, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ChatID(%q) = %d, want %d", tt.sessionID, got, tt.want)
		}
	}
}

func TestResolveNegativeGroupID(t *testing.T) {
	t.Parallel()

	got, err := session.Resolve("telegram_group_-100123456")
	if err != nil {
		t.Fatal(err)
	}
	if got != "telegram_group_-100123456" {
		t.Fatalf("Resolve = %q", got)
	}
}
