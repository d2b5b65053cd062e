// Package session normalizes transport-specific conversation identifiers
// into canonical session ids used throughout the store and scheduler.
package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalidIdentifier is returned when a raw conversation identifier
// cannot be classified as any known session id shape.
var ErrInvalidIdentifier = errors.New("invalid session identifier")

// DefaultPlatform is assumed when a raw identifier carries no platform name.
const DefaultPlatform = "telegram"

// GroupID builds the canonical session id for a group conversation.
func GroupID(platform string, chatID int64) string {
	if platform == "" {
		platform = DefaultPlatform
	}
	return fmt.Sprintf("%s_group_%d", strings.ToLower(platform), chatID)
}

// PrivateID builds the canonical session id for a direct conversation.
func PrivateID(platform string, userID int64) string {
	if platform == "" {
		platform = DefaultPlatform
	}
	return fmt.Sprintf("%s:private:%d", strings.ToLower(platform), userID)
}

// Resolve maps a raw conversation identifier to its canonical session id.
// Accepted shapes, in order of precedence:
//
//   - canonical group ids:   "<platform>_group_<digits>"
//   - canonical private ids: "<platform>:private:<digits>"
//   - legacy three-part ids: "<platform>:GroupMessage:<digits>" or
//     "<platform>:GroupMessage:0_<digits>" (the "0_" prefix is a legacy
//     artifact of the same conversation, not a distinct one)
//   - bare numeric ids, treated as a group on the default platform
//
// Resolution is deterministic; identifiers that match none of the shapes
// return ErrInvalidIdentifier rather than a guess.
func Resolve(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty identifier", ErrInvalidIdentifier)
	}

	if platform, id, ok := strings.Cut(raw, "_group_"); ok {
		if platform == "" || !isChatID(id) {
			return "", fmt.Errorf("%w: malformed group id %q", ErrInvalidIdentifier, raw)
		}
		return strings.ToLower(platform) + "_group_" + id, nil
	}

	if strings.Contains(raw, ":") {
		return resolveThreePart(raw)
	}

	if isDigits(raw) {
		return DefaultPlatform + "_group_" + raw, nil
	}

	return "", fmt.Errorf("%w: unrecognized identifier %q", ErrInvalidIdentifier, raw)
}

func resolveThreePart(raw string) (string, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
		return "", fmt.Errorf("%w: malformed identifier %q", ErrInvalidIdentifier, raw)
	}

	platform := strings.ToLower(parts[0])
	kind := strings.ToLower(parts[1])
	target := strings.TrimPrefix(parts[2], "0_")

	switch {
	case strings.Contains(kind, "group") || strings.Contains(kind, "channel"):
		if !isDigits(target) {
			return "", fmt.Errorf("%w: non-numeric group target in %q", ErrInvalidIdentifier, raw)
		}
		return platform + "_group_" + target, nil
	case strings.Contains(kind, "private") || strings.Contains(kind, "friend"):
		if !isDigits(target) {
			return "", fmt.Errorf("%w: non-numeric private target in %q", ErrInvalidIdentifier, raw)
		}
		return platform + ":private:" + target, nil
	default:
		return "", fmt.Errorf("%w: unknown conversation kind %q", ErrInvalidIdentifier, raw)
	}
}

// ChatID extracts the numeric chat id from a canonical session id so
// a report can be delivered back to its conversation.
func ChatID(sessionID string) (int64, error) {
	var target string
	if _, id, ok := strings.Cut(sessionID, "_group_"); ok {
		target = id
	} else if _, id, ok := strings.Cut(sessionID, ":private:"); ok {
		target = id
	} else {
		return 0, fmt.Errorf("%w: no chat id in %q", ErrInvalidIdentifier, sessionID)
	}

	chatID, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: non-numeric chat id in %q", ErrInvalidIdentifier, sessionID)
	}

	return chatID, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// isChatID accepts digits with an optional leading minus, since group
// chat ids are negative on some platforms.
func isChatID(s string) bool {
	return isDigits(strings.TrimPrefix(s, "-"))
}
