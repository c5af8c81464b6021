package cli

import (
	"errors"

	"github.com/mrz1836/palimpsest/internal/container"
	"github.com/mrz1836/palimpsest/internal/engine"
	"github.com/mrz1836/palimpsest/internal/update"
	plmerr "github.com/mrz1836/palimpsest/pkg/errors"
)

// translateUpdateErr maps internal update failures onto structured CLI
// errors with exit codes and suggestions.
func translateUpdateErr(err error, path string) error {
	switch {
	case errors.Is(err, update.ErrLockTimeout):
		return plmerr.WithSuggestion(
			plmerr.WithDetails(plmerr.ErrLockTimeout, map[string]string{"path": path}),
			"another process holds the container lock; wait, or run 'palimpsest reclaim' if it crashed",
		)
	case errors.Is(err, update.ErrRollbackFailed):
		return plmerr.WithDetails(plmerr.ErrRollbackFailed, map[string]string{"path": path})
	case errors.Is(err, engine.ErrDecryptionFailed):
		return plmerr.ErrDecryptionFailed
	case errors.Is(err, container.ErrFormat):
		return plmerr.WithDetails(plmerr.ErrFormat, map[string]string{"path": path})
	default:
		return plmerr.Wrap(err, "updating container")
	}
}
