// Package shops defines the port for resolving shop tokens to profiles.
package shops

import (
	"context"

	"github.com/tillworks/tillcast/internal/domain/shop"
)

// Lookup resolves an opaque shop token to its profile. It reports false for
// any token that cannot be resolved, without distinguishing why.
type Lookup interface {
	Lookup(ctx context.Context, token string) (shop.Config, bool)
}
