// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package broker wires streamrelay's core log engine to SESP
// connections: an Acceptor per listen address (admin, publisher,
// subscriber, §4.7/C7-C8) and a ConnectionHandler per accepted
// connection.
package broker

import (
	"errors"
	"log"
	"net"
	"sync"

	"github.com/comail/go-uuid/uuid"

	"github.com/ninibe/streamrelay/sesp"
)

// ConnectionHandler processes one SESP connection end to end. Admin,
// Publisher and Subscriber each implement it with their own state
// machine (§4.7).
type ConnectionHandler interface {
	Handle(conn *sesp.Conn)
}

// Acceptor runs a single TCP listener, dispatching every accepted
// connection to handler in its own goroutine. Stop preempts every
// in-flight connection, not just the listener: §5 requires the
// broadcast termination signal make every task "stop accepting new
// commands ... and close its socket," and with no per-command idle
// timeout (§5) a handler blocked in conn.ReadCommand on an open-but-
// idle connection would otherwise never notice a shutdown. The
// shutdown fan-out itself uses close(chan struct{}), the Go idiom
// substituting for the original's broadcast channel.
type Acceptor struct {
	name    string
	handler ConnectionHandler

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	stopped  chan struct{}
	wg       sync.WaitGroup
}

// NewAcceptor builds an Acceptor identified by name (used only in log
// lines) that dispatches accepted connections to handler.
func NewAcceptor(name string, handler ConnectionHandler) *Acceptor {
	return &Acceptor{
		name:    name,
		handler: handler,
		conns:   make(map[net.Conn]struct{}),
		stopped: make(chan struct{}),
	}
}

// ListenAndServe binds addr and accepts connections until Stop is called.
func (a *Acceptor) ListenAndServe(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.listener = l
	a.mu.Unlock()

	log.Printf("info: %s listening on %s", a.name, addr)

	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-a.stopped:
				return nil
			default:
				return err
			}
		}

		a.wg.Add(1)
		go a.serve(conn)
	}
}

func (a *Acceptor) serve(nc net.Conn) {
	defer a.wg.Done()

	a.mu.Lock()
	a.conns[nc] = struct{}{}
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		delete(a.conns, nc)
		a.mu.Unlock()
		logClose(nc)
	}()

	id := uuid.New()
	log.Printf("info: %s connection open id=%s remote=%s", a.name, id, nc.RemoteAddr())
	defer log.Printf("info: %s connection closed id=%s remote=%s", a.name, id, nc.RemoteAddr())

	a.handler.Handle(sesp.NewConn(nc))
}

// Addr returns the listener's bound address, or nil before
// ListenAndServe has bound one — useful for tests that bind ":0" and
// need the OS-assigned port.
func (a *Acceptor) Addr() net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return nil
	}
	return a.listener.Addr()
}

// Stop closes the listener and every live connection, then waits for
// their handler goroutines to return. Closing a connection preempts
// any blocked conn.ReadCommand, so an idle client can't hold shutdown
// open indefinitely.
func (a *Acceptor) Stop() {
	close(a.stopped)

	a.mu.Lock()
	l := a.listener
	conns := make([]net.Conn, 0, len(a.conns))
	for nc := range a.conns {
		conns = append(conns, nc)
	}
	a.mu.Unlock()

	if l != nil {
		logClose(l)
	}
	for _, nc := range conns {
		logClose(nc)
	}

	a.wg.Wait()
}

func logClose(c interface{ Close() error }) {
	if err := c.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		log.Printf("warn: close failed: %s", err)
	}
}
