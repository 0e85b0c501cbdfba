package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andrewpark3412/gift-tracking/internal/remote"
)

// RemoteExecutor replays operations against s. Each call is bounded by
// timeout when it is positive; expiry is reported as an error, so the
// operation stays queued. An update or delete that matched no row counts as
// replayed.
func RemoteExecutor(s remote.Store, timeout time.Duration) Executor {
	return func(ctx context.Context, op Operation) error {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		switch op.Kind {
		case KindInsert:
			_, err := s.Insert(ctx, op.Collection, op.Payload)
			return err
		case KindUpdate:
			_, err := s.Update(ctx, op.Collection, op.RecordID, op.Payload)
			return ignoreNoRows(err)
		case KindDelete:
			return ignoreNoRows(s.Delete(ctx, op.Collection, op.RecordID))
		default:
			return fmt.Errorf("%w: unknown kind %q", ErrInvalidOperation, op.Kind)
		}
	}
}

func ignoreNoRows(err error) error {
	if errors.Is(err, remote.ErrNoRows) {
		return nil
	}
	return err
}
