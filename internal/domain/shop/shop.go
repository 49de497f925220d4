// Package shop defines the shop profile referenced by every request.
package shop

// Config is the immutable profile of one shop, loaded from its profile file
// and keyed by the shop's opaque token. The core looks it up per request and
// never mutates it.
type Config struct {
	Name     string            `yaml:"name" json:"name"`
	Currency string            `yaml:"currency" json:"currency,omitempty"`
	Timezone string            `yaml:"timezone" json:"timezone,omitempty"`
	Metadata map[string]string `yaml:"metadata" json:"metadata,omitempty"`
}
