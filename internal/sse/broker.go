// Package sse implements the Server-Sent Events broker behind live reload.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// BuildInfo describes a finished build pass.
type BuildInfo struct {
	Pages    int    `json:"pages"`
	Written  int    `json:"written"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

// Broker manages SSE client connections and broadcasts events.
//
// Concurrency model: a single internal event loop (goroutine) owns mutable state
// (clients + reload throttle state). Public methods communicate with this loop
// through channels, so no mutexes are required.
type Broker struct {
	reloadMin time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	buildCh       chan BuildInfo
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a new SSE broker. Reload events are sent at most once
// per reloadThrottle; a reload requested inside the window is delayed, not
// dropped.
func NewBroker(reloadThrottle time.Duration) *Broker {
	if reloadThrottle <= 0 {
		reloadThrottle = 500 * time.Millisecond
	}

	b := &Broker{
		reloadMin:     reloadThrottle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		buildCh:       make(chan BuildInfo, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var (
		lastReload time.Time
		delayed    *time.Timer
		delayedCh  <-chan time.Time
	)

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		msg := fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload)
		raw := []byte(msg)

		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking broker loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			if delayed != nil {
				delayed.Stop()
			}
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case info := <-b.buildCh:
			if info.Error != "" {
				broadcast(Event{Type: "build.failed", Data: info})
				continue
			}
			broadcast(Event{Type: "build.done", Data: info})

			if delayedCh != nil {
				continue
			}
			wait := b.reloadMin - time.Since(lastReload)
			if wait <= 0 {
				lastReload = time.Now()
				broadcast(Event{Type: "reload", Data: map[string]string{}})
				continue
			}
			delayed = time.NewTimer(wait)
			delayedCh = delayed.C

		case <-delayedCh:
			delayedCh = nil
			lastReload = time.Now()
			broadcast(Event{Type: "reload", Data: map[string]string{}})

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishBuild announces a finished build. Successful builds are followed by
// a throttled reload event; failed ones only by build.failed.
func (b *Broker) PublishBuild(info BuildInfo) {
	if b.closed.Load() {
		return
	}
	select {
	case b.buildCh <- info:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /_raido/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
