package firestore

import (
	"context"

	"cloud.google.com/go/firestore"

	"github.com/emberhq/ember/pkg/core"
)

// Watch implements core.Watchable using the native snapshot listener. The
// channel closes when ctx is cancelled or the stream fails; the failure is
// logged, since there is no caller left to return it to.
func (s *Store) Watch(ctx context.Context, spec core.QuerySpec) (<-chan core.Event, error) {
	q, err := s.buildQuery(spec)
	if err != nil {
		return nil, err
	}

	events := make(chan core.Event)
	go func() {
		defer close(events)
		snaps := q.Snapshots(ctx)
		defer snaps.Stop()
		for {
			snap, err := snaps.Next()
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Error("firestore: watch stream ended", "collection", spec.Collection, "error", err)
				}
				return
			}
			for _, change := range snap.Changes {
				ev := core.Event{
					Doc: core.Document{
						Collection: spec.Collection,
						ID:         change.Doc.Ref.ID,
						Data:       change.Doc.Data(),
					},
				}
				switch change.Kind {
				case firestore.DocumentAdded:
					ev.Type = core.EventCreate
				case firestore.DocumentModified:
					ev.Type = core.EventModify
				case firestore.DocumentRemoved:
					ev.Type = core.EventDelete
				}
				select {
				case events <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return events, nil
}
