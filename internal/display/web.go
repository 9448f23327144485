// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/accel_plotter/internal/accel"
	"github.com/relabs-tech/accel_plotter/internal/window"
)

//go:embed web
var webAssets embed.FS

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// Frame is what the browser receives, both from /api/accel and over /ws.
type Frame struct {
	Title  string       `json:"title"`
	YMin   int          `json:"y_min"`
	YMax   int          `json:"y_max"`
	Pushed uint64       `json:"pushed"`
	Latest accel.Sample `json:"latest"`
	X      []int        `json:"x"`
	Y      []int        `json:"y"`
	Z      []int        `json:"z"`
}

func newFrame(snap window.Snapshot, opts Options) Frame {
	lo, hi := opts.bounds(snap)
	return Frame{
		Title:  opts.Title,
		YMin:   lo,
		YMax:   hi,
		Pushed: snap.Pushed,
		Latest: snap.Latest,
		X:      snap.X,
		Y:      snap.Y,
		Z:      snap.Z,
	}
}

type wsClient struct {
	conn   *websocket.Conn
	frames chan Frame
	done   chan struct{}
}

// Web serves a live chart to browsers. Every Redraw is pushed to connected
// websocket clients; slow clients only ever see the newest frame.
type Web struct {
	addr    string
	opts    Options
	metrics http.Handler

	ln  net.Listener
	srv *http.Server

	mu    sync.RWMutex
	frame Frame
	have  bool

	clientsMu sync.Mutex
	clients   map[*wsClient]struct{}
	closed    bool
}

// NewWeb creates a web display listening on addr. metrics, when not nil, is
// mounted at /metrics.
func NewWeb(addr string, opts Options, metrics http.Handler) *Web {
	return &Web{
		addr:    addr,
		opts:    opts,
		metrics: metrics,
		clients: make(map[*wsClient]struct{}),
	}
}

func (w *Web) Init() error {
	ln, err := net.Listen("tcp", w.addr)
	if err != nil {
		return err
	}
	w.ln = ln
	w.srv = &http.Server{
		Handler:           w.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("web server listening on http://%s", ln.Addr())
	go func() {
		if err := w.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("web: server error: %v", err)
		}
	}()
	return nil
}

// Router returns the HTTP routes.
func (w *Web) Router() http.Handler {
	static, err := fs.Sub(webAssets, "web")
	if err != nil {
		panic(err)
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/accel", w.handleAccel).Methods(http.MethodGet)
	r.HandleFunc("/ws", w.handleWS)
	if w.metrics != nil {
		r.Handle("/metrics", w.metrics)
	}
	r.PathPrefix("/").Handler(http.FileServer(http.FS(static)))
	return r
}

// Addr returns the bound address, or nil before Init.
func (w *Web) Addr() net.Addr {
	if w.ln == nil {
		return nil
	}
	return w.ln.Addr()
}

func (w *Web) Redraw(snap window.Snapshot) error {
	if w.srv == nil {
		return ErrDisplayNotInitialized{}
	}
	frame := newFrame(snap, w.opts)

	w.mu.Lock()
	w.frame = frame
	w.have = true
	w.mu.Unlock()

	w.clientsMu.Lock()
	defer w.clientsMu.Unlock()
	if w.closed {
		return ErrDisplayClosed{}
	}
	for c := range w.clients {
		offer(c.frames, frame)
	}
	return nil
}

// Hold keeps serving the final window until ctx ends.
func (w *Web) Hold(ctx context.Context) error {
	log.Printf("web: stream ended, final chart still served on http://%s", w.Addr())
	<-ctx.Done()
	return ctx.Err()
}

func (w *Web) Close() error {
	if w.srv == nil {
		return nil
	}

	w.clientsMu.Lock()
	if w.closed {
		w.clientsMu.Unlock()
		return nil
	}
	w.closed = true
	for c := range w.clients {
		c.conn.Close()
	}
	w.clientsMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return w.srv.Shutdown(ctx)
}

func (w *Web) handleAccel(rw http.ResponseWriter, _ *http.Request) {
	w.mu.RLock()
	frame, have := w.frame, w.have
	w.mu.RUnlock()

	if !have {
		http.Error(rw, "no data yet", http.StatusServiceUnavailable)
		return
	}

	rw.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(rw).Encode(frame); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

func (w *Web) handleWS(rw http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(rw, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}

	c := &wsClient{
		conn:   conn,
		frames: make(chan Frame, 1),
		done:   make(chan struct{}),
	}

	w.clientsMu.Lock()
	if w.closed {
		w.clientsMu.Unlock()
		conn.Close()
		return
	}
	w.clients[c] = struct{}{}
	w.clientsMu.Unlock()

	w.mu.RLock()
	if w.have {
		offer(c.frames, w.frame)
	}
	w.mu.RUnlock()

	// Reader only notices the browser going away.
	go func() {
		defer close(c.done)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	defer func() {
		w.clientsMu.Lock()
		delete(w.clients, c)
		w.clientsMu.Unlock()
		conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case frame := <-c.frames:
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(frame); err != nil {
				log.Printf("web: websocket write error: %v", err)
				return
			}
		}
	}
}

// offer replaces whatever is queued in ch with frame.
func offer(ch chan Frame, frame Frame) {
	for {
		select {
		case ch <- frame:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
