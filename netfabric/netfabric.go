// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package netfabric implements the node's ROUTER/DEALER/PUB-SUB message
// fabric on top of github.com/go-zeromq/zmq4, a pure-Go ZMQ4 wire
// implementation (no cgo, no libzmq).
package netfabric

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/decred/go-socks/socks"
	"github.com/decred/slog"
	"github.com/go-zeromq/zmq4"
	"github.com/nyxchain/nyxd/errs"
	"github.com/nyxchain/nyxd/internal/safecontainers"
)

var log = slog.Disabled

// UseLogger installs the subsystem logger.
func UseLogger(logger slog.Logger) { log = logger }

// DefaultConnectionTimeout bounds every outbound dial.
const DefaultConnectionTimeout = 2000 * time.Millisecond

// Frame is one inbound message off the Server's ROUTER socket: the
// originating identity and the payload. readLoop does not fill in
// ObservedAddress; it is left empty.
type Frame struct {
	From            string
	Payload         []byte
	ObservedAddress string
}

// Server is the ROUTER role: accepts many incoming connections each
// identified by a self-chosen 32-byte identity, delivering inbound frames
// into an unbounded FIFO.
type Server struct {
	sock    zmq4.Socket
	inbound *safecontainers.Queue[Frame]

	identities *safecontainers.Set[string]

	stop    chan struct{}
	stopped chan struct{}
}

// NewServer binds a ROUTER socket at addr (e.g. "tcp://0.0.0.0:12897").
func NewServer(ctx context.Context, addr string) (*Server, error) {
	sock := zmq4.NewRouter(ctx)
	if err := sock.Listen(addr); err != nil {
		return nil, errs.New(errs.ZMQBindFailure, "router listen "+addr+": "+err.Error())
	}
	s := &Server{
		sock:       sock,
		inbound:    safecontainers.NewQueue[Frame](),
		identities: safecontainers.NewSet[string](),
		stop:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

// readLoop is the server's one reader worker: it blocks on Recv, which
// zmq4 itself bounds internally, and re-checks s.stop between reads.
func (s *Server) readLoop() {
	defer close(s.stopped)
	for {
		select {
		case <-s.stop:
			return
		default:
		}
		msg, err := s.sock.Recv()
		if err != nil {
			select {
			case <-s.stop:
				return
			default:
				log.Debugf("router recv error: %v", err)
				continue
			}
		}
		if len(msg.Frames) < 2 {
			continue
		}
		identity := string(msg.Frames[0])
		s.identities.Add(identity)
		s.inbound.Push(Frame{From: identity, Payload: msg.Frames[1]})
	}
}

// Recv returns the next inbound frame, blocking until one arrives, the
// server is closed, or stop fires.
func (s *Server) Recv(stop <-chan struct{}) (Frame, bool) {
	return s.inbound.Pop(stop)
}

// Send routes payload to identity. An empty identity broadcasts to every
// identity in the routing table. An identity whose zmq4 send returns an
// error is removed from the routing table.
func (s *Server) Send(identity string, payload []byte) {
	if identity == "" {
		for _, id := range s.identities.Items() {
			s.sendOne(id, payload)
		}
		return
	}
	s.sendOne(identity, payload)
}

func (s *Server) sendOne(identity string, payload []byte) {
	msg := zmq4.NewMsgFrom([]byte(identity), payload)
	if err := s.sock.Send(msg); err != nil {
		log.Debugf("router send to %x failed, dropping identity: %v", identity, err)
		s.identities.Remove(identity)
	}
}

// Identities returns the set of identities currently known to route to.
func (s *Server) Identities() []string { return s.identities.Items() }

// Drop evicts identity from the routing table, so broadcasts skip it. A
// later Send that names identity is still handed to the zmq4 ROUTER; no
// per-peer socket is closed here.
func (s *Server) Drop(identity string) { s.identities.Remove(identity) }

// Close signals the reader to stop, waits for it, and releases the
// socket.
func (s *Server) Close() error {
	close(s.stop)
	s.inbound.Close()
	<-s.stopped
	return s.sock.Close()
}

// Client is the DEALER role: one socket per remote server.
type Client struct {
	sock    zmq4.Socket
	inbound *safecontainers.Queue[[]byte]
	stop    chan struct{}
	stopped chan struct{}
}

// Connect dials host:port, blocking until the transport reports connected
// or DefaultConnectionTimeout elapses. identity is the 32-byte self-chosen
// identity this client presents to the remote ROUTER. proxyAddr, when
// non-empty, routes the dial through a SOCKS5 proxy via
// github.com/decred/go-socks so operators can tunnel outbound connections
// through Tor.
func Connect(ctx context.Context, identity []byte, host string, port uint16, proxyAddr string) (*Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, DefaultConnectionTimeout)
	defer cancel()

	opts := []zmq4.Option{zmq4.WithID(zmq4.SocketIdentity(identity))}
	if proxyAddr != "" {
		proxy := &socks.Proxy{Addr: proxyAddr}
		opts = append(opts, zmq4.WithDialer(dialerFunc(proxy.Dial)))
	}
	sock := zmq4.NewDealer(dialCtx, opts...)
	endpoint := fmt.Sprintf("tcp://%s:%d", host, port)

	done := make(chan error, 1)
	go func() { done <- sock.Dial(endpoint) }()

	select {
	case err := <-done:
		if err != nil {
			return nil, errs.New(errs.ZMQConnectFailure, "dealer dial "+endpoint+": "+err.Error())
		}
	case <-dialCtx.Done():
		sock.Close()
		return nil, errs.New(errs.ConnectFailure, "connect timed out: "+endpoint)
	}

	c := &Client{
		sock:    sock,
		inbound: safecontainers.NewQueue[[]byte](),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	defer close(c.stopped)
	for {
		select {
		case <-c.stop:
			return
		default:
		}
		msg, err := c.sock.Recv()
		if err != nil {
			select {
			case <-c.stop:
				return
			default:
				log.Debugf("dealer recv error: %v", err)
				continue
			}
		}
		if len(msg.Frames) == 0 {
			continue
		}
		c.inbound.Push(msg.Frames[0])
	}
}

// Recv returns the next inbound payload.
func (c *Client) Recv(stop <-chan struct{}) ([]byte, bool) {
	return c.inbound.Pop(stop)
}

// Send delivers payload to the connected remote, non-blocking with a
// drop-on-disconnect policy.
func (c *Client) Send(payload []byte) {
	if err := c.sock.Send(zmq4.NewMsg(payload)); err != nil {
		log.Debugf("dealer send failed: %v", err)
	}
}

// Close signals the reader to stop and releases the socket.
func (c *Client) Close() error {
	close(c.stop)
	c.inbound.Close()
	<-c.stopped
	return c.sock.Close()
}

// Publisher is the one-way notifier fan-out side of the
// publish/subscribe pair, used for "block accepted" / "transaction
// accepted" events.
type Publisher struct {
	sock zmq4.Socket
}

// NewPublisher binds a PUB socket at addr.
func NewPublisher(ctx context.Context, addr string) (*Publisher, error) {
	sock := zmq4.NewPub(ctx)
	if err := sock.Listen(addr); err != nil {
		return nil, errs.New(errs.ZMQBindFailure, "pub listen "+addr+": "+err.Error())
	}
	return &Publisher{sock: sock}, nil
}

// Publish sends (subject, payload) to every current subscriber matching
// subject.
func (p *Publisher) Publish(subject [32]byte, payload []byte) error {
	msg := zmq4.NewMsgFrom(subject[:], payload)
	if err := p.sock.Send(msg); err != nil {
		return errs.New(errs.ZMQConnectFailure, "pub send: "+err.Error())
	}
	return nil
}

// Close releases the socket.
func (p *Publisher) Close() error { return p.sock.Close() }

// dialerFunc adapts a socks.Proxy.Dial-shaped function to zmq4's Dialer
// interface (Dial(network, addr string) (net.Conn, error)).
type dialerFunc func(network, addr string) (net.Conn, error)

func (f dialerFunc) Dial(network, addr string) (net.Conn, error) { return f(network, addr) }

// Subscriber is the receiving side of the notifier pair.
type Subscriber struct {
	sock zmq4.Socket
}

// NewSubscriber dials addr and subscribes to subject (an empty subject
// subscribes to everything).
func NewSubscriber(ctx context.Context, addr string, subject [32]byte) (*Subscriber, error) {
	sock := zmq4.NewSub(ctx)
	if err := sock.Dial(addr); err != nil {
		return nil, errs.New(errs.ZMQConnectFailure, "sub dial "+addr+": "+err.Error())
	}
	if err := sock.SetOption(zmq4.OptionSubscribe, string(subject[:])); err != nil {
		return nil, errs.New(errs.ZMQConnectFailure, "sub subscribe: "+err.Error())
	}
	return &Subscriber{sock: sock}, nil
}

// Recv blocks for the next published (subject, payload) pair.
func (s *Subscriber) Recv() ([32]byte, []byte, error) {
	msg, err := s.sock.Recv()
	if err != nil {
		return [32]byte{}, nil, errs.New(errs.ZMQConnectFailure, "sub recv: "+err.Error())
	}
	var subject [32]byte
	if len(msg.Frames) > 0 {
		copy(subject[:], msg.Frames[0])
	}
	var payload []byte
	if len(msg.Frames) > 1 {
		payload = msg.Frames[1]
	}
	return subject, payload, nil
}

// Close releases the socket.
func (s *Subscriber) Close() error { return s.sock.Close() }
