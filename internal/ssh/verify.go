package ssh

import (
	"fmt"
	"net"
	"strconv"

	xssh "golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// KeyCheck is the outcome of checking one configured key against a known_hosts file.
type KeyCheck struct {
	Type        string
	Fingerprint string
	Err         error
}

// Verify checks that a standard known_hosts consumer accepts every configured
// key for localhost on the configured port. The file is only read; a missing
// or unparsable file fails the whole call. Per-key problems are reported in
// the returned checks.
func Verify(path string, keys HostKeys) ([]KeyCheck, error) {
	port, err := strconv.Atoi(keys.Port)
	if err != nil {
		return nil, err
	}
	cb, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("load known_hosts: %w", err)
	}
	addr := net.JoinHostPort("localhost", keys.Port)
	remote := &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port}

	var checks []KeyCheck
	for _, k := range keys.Keys() {
		c := KeyCheck{Type: KeyType(k)}
		pub, err := ParseHostKey(k)
		if err != nil {
			c.Err = err
			checks = append(checks, c)
			continue
		}
		c.Type = pub.Type()
		c.Fingerprint = xssh.FingerprintSHA256(pub)
		c.Err = cb(addr, remote, pub)
		checks = append(checks, c)
	}
	return checks, nil
}
