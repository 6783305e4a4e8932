// Package cutoff persists the default cohort size ("cutoff") of each game so
// a queue can be recreated without asking for it again.
package cutoff

import (
	"context"

	"github.com/pkg/errors"
)

// ErrUnknownCutoff means no size was supplied and none is stored.
var ErrUnknownCutoff = errors.New("no cohort size known for game")

// Store is a flat game -> cohort size map. Implementations are safe for
// concurrent use.
type Store interface {
	Get(ctx context.Context, game string) (size int, ok bool, err error)
	Set(ctx context.Context, game string, size int) error
	Close() error
}

// Resolve picks the cohort size for game. A positive supplied value wins and
// is persisted when it differs from what is stored; otherwise the stored
// value is used.
func Resolve(ctx context.Context, s Store, game string, supplied int) (int, error) {
	stored, ok, err := s.Get(ctx, game)
	if err != nil {
		return 0, errors.Wrapf(err, "cutoff: read %s", game)
	}
	if supplied <= 0 {
		if !ok || stored <= 0 {
			return 0, ErrUnknownCutoff
		}
		return stored, nil
	}
	if !ok || stored != supplied {
		if err := s.Set(ctx, game, supplied); err != nil {
			return 0, errors.Wrapf(err, "cutoff: write %s", game)
		}
	}
	return supplied, nil
}
