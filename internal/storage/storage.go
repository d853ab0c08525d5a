// Package storage is the durable key-value store the storefront mirrors its
// local state into: the bearer token, the current user, and the cart. It is
// the localStorage counterpart of the web client; writes are synchronous and
// last-writer-wins.
package storage

// Well-known keys.
const (
	KeyToken = "token"
	KeyUser  = "user"
	KeyCart  = "cart"
)

// Store is a small synchronous key-value store.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool)
	// Set writes key to value durably before returning.
	Set(key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
}
