package memory

import (
	"context"

	"github.com/emberhq/ember/pkg/core"
)

const watchBuffer = 16

type watcher struct {
	spec   core.QuerySpec
	events chan core.Event
	done   chan struct{}
}

func (w *watcher) close() {
	select {
	case <-w.done:
	default:
		close(w.done)
		close(w.events)
	}
}

// Watch implements core.Watchable. Events are delivered best-effort: a
// subscriber that falls more than watchBuffer events behind misses events
// rather than blocking writers.
func (s *Store) Watch(ctx context.Context, spec core.QuerySpec) (<-chan core.Event, error) {
	w := &watcher{
		spec:   spec,
		events: make(chan core.Event, watchBuffer),
		done:   make(chan struct{}),
	}
	s.watchMu.Lock()
	s.watchers = append(s.watchers, w)
	s.watchMu.Unlock()

	go func() {
		<-ctx.Done()
		s.watchMu.Lock()
		for i, other := range s.watchers {
			if other == w {
				s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
				break
			}
		}
		s.watchMu.Unlock()
		w.close()
	}()

	return w.events, nil
}

func (s *Store) notify(ev core.Event) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for _, w := range s.watchers {
		if w.spec.Collection != ev.Doc.Collection {
			continue
		}
		if ev.Type != core.EventDelete {
			ok, err := matchesAll(ev.Doc.Data, w.spec.Filters)
			if err != nil || !ok {
				continue
			}
		}
		select {
		case <-w.done:
		case w.events <- ev:
		default:
		}
	}
}
