package ssh

import (
	"fmt"
	"strings"
)

// HostKeys describes the host keys to register for one local reverse tunnel port.
// An empty key string means that key type is not registered.
type HostKeys struct {
	Port    string
	ECDSA   string
	Ed25519 string
	RSA     string
}

// Pattern returns the known_hosts host pattern, always in bracketed form.
func (h HostKeys) Pattern() string {
	return fmt.Sprintf("[localhost]:%s", h.Port)
}

// Keys returns the configured keys in declaration order: ECDSA, Ed25519, RSA.
func (h HostKeys) Keys() []string {
	var out []string
	for _, k := range []string{h.ECDSA, h.Ed25519, h.RSA} {
		if strings.TrimSpace(k) == "" {
			continue
		}
		out = append(out, k)
	}
	return out
}
