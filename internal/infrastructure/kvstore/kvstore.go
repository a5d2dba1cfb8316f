package kvstore

// Store is the embedded key-value engine the repositories run against. It is
// synchronous, string-keyed, and assumed to be opened once at process start.
// Encryption at rest is the engine's concern and invisible to callers.
type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) ([]byte, bool, error)
	// Set writes the value, overwriting any previous one.
	Set(key string, value []byte) error
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(key string) error
	// Contains reports key presence without reading the value.
	Contains(key string) (bool, error)
	// Keys lists every key currently in the store.
	Keys() ([]string, error)
	// Close releases the underlying resources.
	Close() error
}
