// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"

	"github.com/relabs-tech/accel_plotter/internal/window"
)

// Session accepts exactly one sensor connection and owns it, together with
// its listener, until the stream ends. Both are released exactly once on
// every exit path.
type Session struct {
	addr   string
	buffer *window.Buffer
	opts   LoopOptions
	logger *log.Logger

	// listen is swapped in tests.
	listen func(ctx context.Context, addr string) (net.Listener, error)

	mu   sync.Mutex
	ln   net.Listener
	conn net.Conn
	loop *Loop

	lnOnce   sync.Once
	connOnce sync.Once
}

// NewSession prepares a session that will listen on addr.
func NewSession(addr string, buf *window.Buffer, opts LoopOptions) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "", log.LstdFlags)
		opts.Logger = logger
	}
	return &Session{
		addr:   addr,
		buffer: buf,
		opts:   opts,
		logger: logger,
		listen: func(ctx context.Context, addr string) (net.Listener, error) {
			var lc net.ListenConfig
			return lc.Listen(ctx, "tcp", addr)
		},
	}
}

// Listen binds the listener. Serve calls it when needed; calling it first
// lets the caller learn the bound address.
func (s *Session) Listen(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return nil
	}
	ln, err := s.listen(ctx, s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.ln = ln
	return nil
}

// Addr returns the listener address, or nil before Listen.
func (s *Session) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serve waits for the sensor to connect, stops accepting, and runs the ingest
// loop over the connection. It returns nil when the peer closes the stream.
func (s *Session) Serve(ctx context.Context) error {
	if err := s.Listen(ctx); err != nil {
		return err
	}
	defer s.release()

	// Accept and Read have no context; closing unblocks them.
	stop := context.AfterFunc(ctx, s.release)
	defer stop()

	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()

	s.logger.Printf("ingest: TCP server started on %s, waiting for connection...", ln.Addr())
	conn, err := ln.Accept()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &IOError{Op: "accept", Err: err}
	}

	s.mu.Lock()
	s.conn = conn
	s.loop = NewLoop(conn, s.buffer, s.opts)
	loop := s.loop
	s.mu.Unlock()

	// A cancel that raced the accept has already run release without
	// seeing conn.
	if ctx.Err() != nil {
		s.closeConn()
		return ctx.Err()
	}

	// One sensor per process: nobody else gets in.
	s.closeListener()
	s.logger.Printf("ingest: connected by %s", conn.RemoteAddr())

	return loop.Run(ctx)
}

// Stats returns the loop counters, zero before a connection is accepted.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	loop := s.loop
	s.mu.Unlock()
	if loop == nil {
		return Stats{}
	}
	return loop.Stats()
}

// State returns the loop state, WaitingForData before a connection.
func (s *Session) State() State {
	s.mu.Lock()
	loop := s.loop
	s.mu.Unlock()
	if loop == nil {
		return WaitingForData
	}
	return loop.State()
}

func (s *Session) release() {
	s.closeConn()
	s.closeListener()
}

func (s *Session) closeListener() {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return
	}
	s.lnOnce.Do(func() {
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Printf("ingest: closing listener: %v", err)
		}
	})
}

func (s *Session) closeConn() {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return
	}
	s.connOnce.Do(func() {
		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Printf("ingest: closing connection: %v", err)
		}
	})
}

// ServeStream runs the ingest loop over an already open stream, such as a
// serial port, and closes it when the loop ends or ctx is cancelled.
func ServeStream(ctx context.Context, rc io.ReadCloser, buf *window.Buffer, opts LoopOptions) (Stats, error) {
	var once sync.Once
	release := func() {
		once.Do(func() {
			if err := rc.Close(); err != nil && opts.Logger != nil {
				opts.Logger.Printf("ingest: closing stream: %v", err)
			}
		})
	}
	defer release()

	stop := context.AfterFunc(ctx, release)
	defer stop()

	loop := NewLoop(rc, buf, opts)
	err := loop.Run(ctx)
	return loop.Stats(), err
}
