// Package watch mirrors the drivers and orders collections into the
// dashboard. A change-stream event triggers a full re-read of the
// collection; the resulting snapshot is reduced and broadcast to every
// connected client. When change streams are unavailable (standalone Mongo)
// the watcher degrades to polling.
package watch

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	logrus "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"fleet-dispatch-api-server/internal/cache"
	"fleet-dispatch-api-server/internal/socket"
	"fleet-dispatch-api-server/internal/store"
	"fleet-dispatch-api-server/internal/view"
)

// DefaultPollInterval is the fallback refresh cadence when change streams
// cannot be opened.
const DefaultPollInterval = 5 * time.Second

// ConnectionStatus is broadcast whenever a watcher loses or regains its
// stream, so dashboards can show a "connection lost" indicator.
type ConnectionStatus struct {
	Collection string `json:"collection"`
	Connected  bool   `json:"connected"`
	Detail     string `json:"detail,omitempty"`
}

type Watcher struct {
	store        *store.Store
	hub          *socket.Hub
	snapshots    *cache.Snapshots
	pollInterval time.Duration

	mu          sync.Mutex
	markerState view.MarkerState
	connected   map[string]bool
}

func New(st *store.Store, hub *socket.Hub, snapshots *cache.Snapshots) *Watcher {
	return &Watcher{
		store:        st,
		hub:          hub,
		snapshots:    snapshots,
		pollInterval: DefaultPollInterval,
		markerState:  view.MarkerState{},
		connected:    map[string]bool{},
	}
}

// Run starts one watch loop per collection and blocks until ctx is
// canceled.
func (w *Watcher) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		w.watchCollection(ctx, store.CollDrivers, w.refreshDrivers)
	}()
	go func() {
		defer wg.Done()
		w.watchCollection(ctx, store.CollOrders, w.refreshOrders)
	}()
	wg.Wait()
}

// watchCollection keeps one collection mirrored: an immediate refresh, then
// change-stream events, falling back to a poll tick whenever the stream
// cannot be opened or breaks.
func (w *Watcher) watchCollection(ctx context.Context, name string, refresh func(context.Context) error) {
	log := logrus.WithField("collection", name)

	if err := refresh(ctx); err != nil {
		log.WithError(err).Error("initial snapshot failed")
	}

	for {
		if ctx.Err() != nil {
			return
		}

		stream, err := w.store.Database().Collection(name).Watch(ctx, mongo.Pipeline{})
		if err != nil {
			w.setConnected(name, false, err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.pollInterval):
			}
			if err := refresh(ctx); err != nil {
				log.WithError(err).Error("poll refresh failed")
			}
			continue
		}

		w.setConnected(name, true, nil)
		// Refresh once more: writes between the last refresh and the
		// stream opening would otherwise be missed.
		if err := refresh(ctx); err != nil {
			log.WithError(err).Error("refresh failed")
		}

		for stream.Next(ctx) {
			if err := refresh(ctx); err != nil {
				log.WithError(err).Error("refresh failed")
			}
		}
		streamErr := stream.Err()
		stream.Close(context.Background())

		if ctx.Err() != nil {
			return
		}
		if streamErr != nil {
			w.setConnected(name, false, streamErr)
		}
	}
}

func (w *Watcher) refreshDrivers(ctx context.Context) error {
	drivers, err := w.store.ListDrivers(ctx)
	if err != nil {
		return err
	}

	w.mu.Lock()
	next, payload := view.ReduceDrivers(w.markerState, drivers)
	w.markerState = next
	w.mu.Unlock()

	w.publish(ctx, socket.Message{Type: socket.DriversSnapshotType, Payload: payload})
	return nil
}

func (w *Watcher) refreshOrders(ctx context.Context) error {
	orders, err := w.store.ListOrders(ctx)
	if err != nil {
		return err
	}

	payload := view.ReduceOrders(orders)
	w.publish(ctx, socket.Message{Type: socket.OrdersSnapshotType, Payload: payload})
	return nil
}

func (w *Watcher) publish(ctx context.Context, msg socket.Message) {
	w.hub.Broadcast(msg)

	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := w.snapshots.Set(ctx, msg.Type, data); err != nil {
		logrus.WithError(err).Warn("snapshot cache write failed")
	}
}

// setConnected broadcasts a status change at most once per transition.
func (w *Watcher) setConnected(name string, connected bool, cause error) {
	w.mu.Lock()
	was, known := w.connected[name]
	w.connected[name] = connected
	w.mu.Unlock()

	if known && was == connected {
		return
	}

	status := ConnectionStatus{Collection: name, Connected: connected}
	if cause != nil {
		status.Detail = cause.Error()
		logrus.WithError(cause).WithField("collection", name).Warn("collection stream degraded, polling")
	} else if connected {
		logrus.WithField("collection", name).Info("collection stream established")
	}

	w.hub.Broadcast(socket.Message{Type: socket.ConnectionStatusType, Payload: status})
}
