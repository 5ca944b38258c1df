package market

import (
	"encoding/base64"
	"fmt"
	"net/url"
)

// Decode reverses the obfuscation on API list payloads. The server splices
// five junk characters into the base64 text at index 5; after removing them
// the payload is base64 over a percent-encoded JSON string.
func Decode(encoded string) (string, error) {
	if len(encoded) < 10 {
		return "", fmt.Errorf("decode payload: too short (%d bytes)", len(encoded))
	}

	processed := encoded[:5] + encoded[10:]
	raw, err := base64.StdEncoding.DecodeString(processed)
	if err != nil {
		return "", fmt.Errorf("decode payload: %w", err)
	}

	out, err := url.PathUnescape(string(raw))
	if err != nil {
		return "", fmt.Errorf("decode payload: %w", err)
	}
	return out, nil
}
