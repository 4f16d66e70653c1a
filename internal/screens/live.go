package screens

import (
	"context"

	"go.uber.org/zap"

	"kidsvids/internal/live"
	"kidsvids/internal/session"
)

// View is the snapshot of a screen backed by one live query
type View[V any] struct {
	Status  Status `json:"status"`
	Data    V      `json:"data"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// keyFunc extracts the identity a screen's query is scoped to. ok is false
// when the session has nothing to scope by.
type keyFunc[K comparable] func(session.State) (key K, ok bool)

// Live follows the session and keeps one live query subscribed for the
// current key. A key change cancels the old query before the new one starts.
type Live[K comparable, V any] struct {
	*Holder[View[V]]

	sess    *session.Session
	key     keyFunc[K]
	watch   func(ctx context.Context, key K) *live.Subscription[V]
	missing string
	log     *zap.Logger

	switcher live.Switcher
	cancel   context.CancelFunc
	done     chan struct{}
}

func newLive[K comparable, V any](sess *session.Session, key keyFunc[K], missing string, watch func(context.Context, K) *live.Subscription[V], log *zap.Logger) *Live[K, V] {
	ctx, cancel := context.WithCancel(context.Background())
	l := &Live[K, V]{
		Holder:  newHolder(View[V]{Status: StatusIdle}),
		sess:    sess,
		key:     key,
		watch:   watch,
		missing: missing,
		log:     log,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go l.run(ctx)
	return l
}

// Close stops the screen and its queries
func (l *Live[K, V]) Close() {
	l.cancel()
	<-l.done
}

// AcknowledgeMessage clears the one-shot message
func (l *Live[K, V]) AcknowledgeMessage() {
	l.update(nil, func(v *View[V]) { v.Message = "" })
}

func (l *Live[K, V]) fail(err error) {
	l.log.Warn("screen action failed", zap.Error(err))
	l.update(nil, func(v *View[V]) { v.Message = errorText(err) })
}

func (l *Live[K, V]) run(ctx context.Context) {
	defer close(l.done)
	defer l.switcher.Stop()

	var current K
	var haveCurrent, started bool

	for state := range l.sess.Watch(ctx) {
		key, ok := l.key(state)
		if started && ok == haveCurrent && key == current {
			continue
		}
		started = true
		current, haveCurrent = key, ok

		if !ok {
			l.switcher.Stop()
			l.update(nil, func(v *View[V]) {
				var zero V
				*v = View[V]{Status: StatusError, Data: zero, Error: l.missing, Message: v.Message}
			})
			continue
		}
		l.switcher.Start(ctx, func(ctx context.Context, gen uint64) {
			l.follow(ctx, gen, key)
		})
	}
}

func (l *Live[K, V]) follow(ctx context.Context, gen uint64, key K) {
	current := func() bool { return l.switcher.IsCurrent(gen) }

	l.update(current, func(v *View[V]) {
		var zero V
		*v = View[V]{Status: StatusLoading, Data: zero, Message: v.Message}
	})

	sub := l.watch(ctx, key)
	defer sub.Close()

	for {
		select {
		case snap, ok := <-sub.C:
			if !ok {
				return
			}
			l.update(current, func(v *View[V]) {
				if snap.Err != nil {
					var zero V
					v.Status, v.Data, v.Error = StatusError, zero, errorText(snap.Err)
					return
				}
				v.Status, v.Data, v.Error = StatusReady, snap.Value, ""
			})
			if snap.Err != nil {
				l.log.Debug("screen query failed", zap.Error(snap.Err))
			}
		case <-ctx.Done():
			return
		}
	}
}

func selectedKid(s session.State) (int64, bool) {
	return s.KidID()
}

func loggedInParent(s session.State) (int64, bool) {
	if s.ParentID == nil {
		return 0, false
	}
	return *s.ParentID, true
}
