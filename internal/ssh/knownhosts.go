package ssh

// FormatRecord returns one known_hosts line for pattern without a trailing newline.
// The key is written as given.
func FormatRecord(pattern, key string) string {
	return pattern + " " + key
}
