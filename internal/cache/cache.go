package cache

// Cache is a string-keyed persistent store.
//
// Fetch reports ok = false for a missing key; absence is a data
// condition, not an error. Put overwrites any existing value. Delete
// of a missing key is a no-op.
type Cache interface {
	Fetch(key string) (value []byte, ok bool, err error)
	Put(key string, value []byte) error
	Delete(key string) error
}
