package ssh

import (
	"fmt"
	"strings"

	xssh "golang.org/x/crypto/ssh"
)

// ParseHostKey parses a "<key-type> <base64>" public key string.
func ParseHostKey(key string) (xssh.PublicKey, error) {
	pub, _, _, _, err := xssh.ParseAuthorizedKey([]byte(strings.TrimSpace(key)))
	if err != nil {
		return nil, fmt.Errorf("parse host key: %w", err)
	}
	return pub, nil
}

// KeyType returns the type tag of a key string without parsing the key material.
func KeyType(key string) string {
	fields := strings.Fields(key)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
