package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"

	"github.com/au-phiware/d3-gup/selection"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 1 * time.Second
	// The rate at which patch batches are pushed, so as not to overburden.
	pubResolution  = 50 * time.Millisecond
	pingResolution = 200 * time.Millisecond
	// Pings to tolerate losing before concluding the peer is gone.
	pongWait = pingResolution * 4

	readDeadline  = time.Second
	writeDeadline = time.Second
)

var upgrader = websocket.Upgrader{}

// ErrPongDeadlineExceeded is returned when the peer stops answering pings.
var ErrPongDeadlineExceeded error = errors.New("client disconnect, pong deadline exceeded")

// ErrSockCongestion indicates too many waiters on the socket for an op.
var ErrSockCongestion = errors.New("sock op failed due to congestion")

// publisher pushes patch batches unidirectionally to one web client. Batches
// are idempotent with respect to the latest element state, so intervening
// batches may be dropped when they arrive faster than the publish rate.
type publisher struct {
	updates <-chan []selection.EleUpdate
	sock    *socket
	rootCtx context.Context
}

// newPublisher upgrades the request to a websocket and returns a publisher
// for the given patch channel.
func newPublisher(
	updates <-chan []selection.EleUpdate,
	w http.ResponseWriter,
	r *http.Request,
) (*publisher, error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, err
	}

	return &publisher{
		updates: updates,
		sock:    newSocket(ws),
		rootCtx: r.Context(),
	}, nil
}

// sync runs the publisher until the client disconnects or an error occurs;
// nil is returned on orderly disconnect.
func (pub *publisher) sync() error {
	group, groupCtx := errgroup.WithContext(pub.rootCtx)

	group.Go(func() error {
		return pub.readMessages(groupCtx)
	})
	group.Go(func() error {
		return pub.pingPong(groupCtx)
	})
	group.Go(func() error {
		return pub.publish(groupCtx)
	})
	// The first failure (or request cancellation) closes the socket, which
	// unblocks any read still pending on the connection.
	go func() {
		<-groupCtx.Done()
		pub.sock.Close()
	}()

	return group.Wait()
}

// pingPong runs the liveness check. Requires readMessages running so the
// pong handler gets called.
func (pub *publisher) pingPong(ctx context.Context) error {
	// Buffered, with a non-blocking send: the handler runs on the read
	// routine and may fire after this routine has already returned.
	pong := make(chan struct{}, 1)
	pub.sock.Conn().SetPongHandler(func(_ string) error {
		select {
		case pong <- struct{}{}:
		default:
		}
		return nil
	})

	pinger := channerics.NewTicker(ctx.Done(), pingResolution)
	lastPong := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pinger:
			if time.Since(lastPong) > pongWait {
				return ErrPongDeadlineExceeded
			}

			if err := pub.ping(ctx); err != nil {
				return err
			}
		case <-pong:
			lastPong = time.Now()
		}
	}
}

func (pub *publisher) ping(ctx context.Context) error {
	return pub.sock.Write(
		ctx,
		func(ws *websocket.Conn) (err error) {
			if err = ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				if isError(err) {
					err = fmt.Errorf("ping failed: %T %v", err, err)
				}
			}
			return
		})
}

// readMessages monitors for messages from the client. Errors returned by
// websocket reads are permanent, hence any error triggers full teardown.
func (pub *publisher) readMessages(ctx context.Context) error {
	for {
		err := pub.sock.Read(
			ctx,
			func(ws *websocket.Conn) (readErr error) {
				_, _, readErr = ws.ReadMessage()
				return
			})
		if err != nil {
			return err
		}
	}
}

func (pub *publisher) publish(ctx context.Context) error {
	lastSync := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case updates, ok := <-pub.updates:
			// Graceful input channel closure.
			if !ok {
				return nil
			}
			// Drop batches when receiving too quickly.
			if time.Since(lastSync) < pubResolution {
				break
			}

			lastSync = time.Now()
			err := pub.sock.Write(
				ctx,
				func(ws *websocket.Conn) (writeErr error) {
					if writeErr = ws.SetWriteDeadline(time.Now().Add(writeWait)); writeErr != nil {
						writeErr = fmt.Errorf("failed to set deadline: %T %w", writeErr, writeErr)
						return
					}

					if writeErr = ws.WriteJSON(updates); writeErr != nil {
						if isError(writeErr) {
							writeErr = fmt.Errorf("publish failed: %T %v", writeErr, writeErr)
						}
					}
					return
				})
			if err != nil {
				return err
			}
		}
	}
}

func isError(err error) bool {
	return err != nil && websocket.IsUnexpectedCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}

// socket serializes reads and writes to the websocket, which allows only one
// concurrent reader and writer at a time.
type socket struct {
	// Merely mutexes, but channel semantics are cleaner.
	readSem  chan struct{}
	writeSem chan struct{}
	ws       *websocket.Conn
}

func newSocket(ws *websocket.Conn) *socket {
	return &socket{
		readSem:  make(chan struct{}, 1),
		writeSem: make(chan struct{}, 1),
		ws:       ws,
	}
}

// Conn returns the underlying websocket. Only for non-concurrent setup,
// e.g. adding handlers.
func (sock *socket) Conn() *websocket.Conn {
	return sock.ws
}

// Close sends a close frame, best effort, then tears down the connection,
// which unblocks any read or write still in flight.
func (sock *socket) Close() {
	select {
	case sock.writeSem <- struct{}{}:
		_ = sock.ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		<-sock.writeSem
	case <-time.After(writeDeadline):
	}
	sock.ws.Close()
}

// Read serializes read operations on the socket.
func (sock *socket) Read(
	ctx context.Context,
	readFn func(*websocket.Conn) error,
) error {
	select {
	case <-ctx.Done():
		return nil
	case sock.readSem <- struct{}{}:
		defer func() { <-sock.readSem }()
		return readFn(sock.ws)
	case <-time.After(readDeadline):
		return ErrSockCongestion
	}
}

// Write serializes write operations to the socket.
func (sock *socket) Write(
	ctx context.Context,
	writeFn func(*websocket.Conn) error,
) error {
	select {
	case <-ctx.Done():
		return nil
	case sock.writeSem <- struct{}{}:
		defer func() { <-sock.writeSem }()
		return writeFn(sock.ws)
	case <-time.After(writeDeadline):
		return ErrSockCongestion
	}
}
