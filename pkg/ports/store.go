package ports

import "context"

// SettingsStore is namespaced key/value persistence for presets. Values are
// opaque JSON blobs; the sequencer never inspects them.
type SettingsStore interface {
	// Get retrieves a value. Returns domain.ErrPresetNotFound when absent.
	Get(ctx context.Context, namespace, key string) ([]byte, error)

	// Set stores a value.
	Set(ctx context.Context, namespace, key string, value []byte) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, namespace, key string) error

	// List returns the keys present in a namespace.
	List(ctx context.Context, namespace string) ([]string, error)
}
