package openaccess

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// userIdPattern matches the user IDs issued by our login provider: 28 alphanumeric
// characters, which also happens to be a valid base64 string
var userIdPattern = regexp.MustCompile(`^[A-Za-z0-9]{28}$`)

// IsValidUserId returns true if the given string is a well-formed user ID
func IsValidUserId(userId string) bool {
	return userIdPattern.MatchString(userId)
}

// PartnerUserId derives the identifier that we share with Spotify for the given user:
// the user ID is interpreted as base64 and the decoded bytes are re-encoded as hex.
//
// See https://developer.spotify.com/documentation/open-access/overview/#partner-user-id
func PartnerUserId(userId string) (string, error) {
	trimmed := strings.TrimRight(userId, "=")
	decoded, err := base64.RawStdEncoding.DecodeString(trimmed)
	if err != nil {
		return "", fmt.Errorf("failed to decode user ID as base64: %w", err)
	}
	if len(decoded) == 0 {
		return "", fmt.Errorf("user ID is empty")
	}
	return hex.EncodeToString(decoded), nil
}
