package jwtx

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrMissingClaim = errors.New("jwtx: missing required claim")
)

var segmentReplacer = strings.NewReplacer("-", "+", "_", "/")

// Decode extracts the claims from a compact token without verifying its
// signature. The server is the only party that checks signatures; the
// console reads claims for UI decisions only.
//
// Failures are returned, never raised: ErrMalformed when the token does not
// have three non-empty segments or its payload is not base64 JSON, and
// ErrMissingClaim when sub, role or exp is absent.
func Decode(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Claims{}, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformed, len(parts))
	}
	for i, part := range parts {
		if part == "" {
			return Claims{}, fmt.Errorf("%w: segment %d is empty", ErrMalformed, i)
		}
	}

	payload, err := DecodeSegment(parts[1])
	if err != nil {
		return Claims{}, fmt.Errorf("%w: payload is not base64: %v", ErrMalformed, err)
	}

	var c Claims
	if err := json.Unmarshal(payload, &c); err != nil {
		return Claims{}, fmt.Errorf("%w: payload is not a claims object: %v", ErrMalformed, err)
	}

	switch {
	case c.Subject == "":
		return Claims{}, fmt.Errorf("%w: sub", ErrMissingClaim)
	case c.Role == "":
		return Claims{}, fmt.Errorf("%w: role", ErrMissingClaim)
	case c.ExpiresAt == nil:
		return Claims{}, fmt.Errorf("%w: exp", ErrMissingClaim)
	}

	return c, nil
}

// DecodeSegment decodes one base64url token segment. The URL alphabet is
// mapped onto the standard one and padding is optional.
func DecodeSegment(seg string) ([]byte, error) {
	s := strings.TrimRight(segmentReplacer.Replace(seg), "=")
	return base64.RawStdEncoding.DecodeString(s)
}
