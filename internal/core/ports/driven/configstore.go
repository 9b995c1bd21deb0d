package driven

// ConfigStore holds flat settings keyed in dot notation ("embedding.provider").
// Typed getters return the zero value for missing keys or mismatched types.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string

	// GetInt accepts any integral value. Floats are truncated.
	GetInt(key string) int

	// GetFloat widens integers.
	GetFloat(key string) float64

	// Set stores one value and persists it.
	Set(key string, value any) error

	// SetAll stores several values and persists them in one write.
	SetAll(values map[string]any) error

	// Keys returns every stored key in sorted order.
	Keys() []string
}
