package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"kidsvids/internal/screens"
)

// screenTimeout bounds how long a one-shot request waits for a screen to load
const screenTimeout = 10 * time.Second

type closer interface {
	Close()
}

// snapshotView waits for a live-query screen to settle, closes it and writes
// its snapshot
func snapshotView[V any](w http.ResponseWriter, r *http.Request, log *zap.Logger, screen closer, holder *screens.Holder[screens.View[V]]) {
	defer screen.Close()

	ctx, cancel := context.WithTimeout(r.Context(), screenTimeout)
	defer cancel()

	view, err := holder.Await(ctx, func(v screens.View[V]) bool { return v.Status.Settled() })
	if err != nil {
		respondWithError(w, log, http.StatusGatewayTimeout, "Screen did not load in time", "screen await failed", err)
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}

// streamUpdates writes every snapshot from updates as a server-sent event
// until the client goes away
func streamUpdates[S any](w http.ResponseWriter, log *zap.Logger, updates <-chan S) {
	rc := http.NewResponseController(w)
	rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		log.Error("streaming unsupported", zap.Error(err))
		return
	}

	for snap := range updates {
		data, err := json.Marshal(snap)
		if err != nil {
			log.Error("failed to encode snapshot", zap.Error(err))
			return
		}
		if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data); err != nil {
			return
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
