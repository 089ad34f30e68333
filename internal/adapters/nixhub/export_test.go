package nixhub

// GetHashForTest exports the cache key derivation for testing.
func GetHashForTest(name, version string) string {
	return getHash(name, version)
}
