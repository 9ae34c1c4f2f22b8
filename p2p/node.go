// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package p2p implements the gossip protocol state machine, connection
// manager and periodic tasks on top of package netfabric's ROUTER/DEALER
// fabric and package addrmgr's peer database.
package p2p

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/decred/slog"
	"github.com/nyxchain/nyxd/addrmgr"
	"github.com/nyxchain/nyxd/chainhash"
	"github.com/nyxchain/nyxd/errs"
	"github.com/nyxchain/nyxd/internal/safecontainers"
	"github.com/nyxchain/nyxd/netfabric"
)

var log = slog.Disabled

// UseLogger installs the subsystem logger.
func UseLogger(logger slog.Logger) { log = logger }

// Version is what we speak; MinimumVersion gates what we accept.
const (
	Version        = 1
	MinimumVersion = 1
)

// Periodic task intervals.
const (
	KeepaliveInterval    = 30 * time.Second
	PeerExchangeInterval = 120 * time.Second
	ConnMgrInterval      = 30 * time.Second
)

// ThreadPollingInterval is the worker wake-up granularity.
const ThreadPollingInterval = 50 * time.Millisecond

// defaultExtraConnections is the out-degree budget beyond the seed
// count.
const defaultExtraConnections = 8

// dedupCacheSize bounds the recently-seen DATA-packet LRU: large enough
// to cover several gossip rounds without unbounded growth.
const dedupCacheSize = 4096

// connState is the per-remote connection state machine.
type connState int

const (
	disconnected connState = iota
	awaitingHandshake
	established
)

// Config configures a Node.
type Config struct {
	BindAddr      string
	Port          uint16
	NetworkID     uint64
	SeedNodes     []PeerAddr // compiled-in seeds
	OperatorSeeds []string   // host:port seeds supplied by the operator
	SeedMode      bool       // seed-mode nodes always proceed at startup
	ProxyAddr     string     // optional SOCKS5 proxy for outbound dials
}

// outgoing tracks one client connection this node dialed.
type outgoing struct {
	client *netfabric.Client
	state  connState
	peerID chainhash.Hash
	addr   string
}

// Node is the P2P node: protocol state machine, connection manager and
// periodic tasks layered over netfabric and addrmgr.
type Node struct {
	cfg     Config
	ourID   chainhash.Hash
	server  *netfabric.Server
	addrMgr *addrmgr.Manager

	outMu sync.Mutex
	out   map[string]*outgoing // keyed by dial address "host:port"

	// established is mutated only by the poller goroutine.
	established *safecontainers.Set[string]

	seen *lru.Cache[chainhash.Hash, struct{}]

	onData func(Data)

	stop    chan struct{}
	stopped sync.WaitGroup
}

// New constructs a Node. Call Start to bind, dial seeds and launch the
// background workers.
func New(cfg Config, addrMgr *addrmgr.Manager, onData func(Data)) (*Node, error) {
	seen, err := lru.New[chainhash.Hash, struct{}](dedupCacheSize)
	if err != nil {
		return nil, errs.New(errs.GenericFailure, "lru: "+err.Error())
	}
	return &Node{
		cfg:         cfg,
		ourID:       addrMgr.OurID(),
		addrMgr:     addrMgr,
		out:         make(map[string]*outgoing),
		established: safecontainers.NewSet[string](),
		seen:        seen,
		onData:      onData,
		stop:        make(chan struct{}),
	}, nil
}

// Start binds the server, attempts connections to seed nodes (compiled-in
// and operator-supplied) and launches the poller plus the three periodic
// workers.
func (n *Node) Start(ctx context.Context) error {
	server, err := netfabric.NewServer(ctx, fmt.Sprintf("tcp://%s:%d", n.cfg.BindAddr, n.cfg.Port))
	if err != nil {
		return err
	}
	n.server = server

	connected := 0
	for _, s := range n.cfg.SeedNodes {
		if n.dialSeed(ctx, fmt.Sprintf("%s:%d", ipString(s.IP), s.Port)) {
			connected++
		}
	}
	for _, addr := range n.cfg.OperatorSeeds {
		if n.dialSeed(ctx, addr) {
			connected++
		}
	}

	if !n.cfg.SeedMode {
		peers, perr := n.addrMgr.Peers()
		if perr != nil {
			return perr
		}
		if connected == 0 && len(peers) == 0 {
			return errs.New(errs.P2PSeedConnect, "no seeds reachable and peer database is empty")
		}
	}

	n.stopped.Add(4)
	go n.pollLoop(ctx)
	go n.connMgrLoop(ctx)
	go n.keepaliveLoop(ctx)
	go n.peerExchangeLoop(ctx)

	return nil
}

func (n *Node) dialSeed(ctx context.Context, addr string) bool {
	host, port, err := splitHostPort(addr)
	if err != nil {
		log.Warnf("bad seed address %q: %v", addr, err)
		return false
	}
	if err := n.connectOutgoing(ctx, host, port); err != nil {
		log.Debugf("seed connect %s failed: %v", addr, err)
		return false
	}
	return true
}

// connectOutgoing dials host:port (optionally via a SOCKS5 proxy) and
// sends the initial HANDSHAKE.
func (n *Node) connectOutgoing(ctx context.Context, host string, port uint16) error {
	addr := fmt.Sprintf("%s:%d", host, port)

	n.outMu.Lock()
	if _, dup := n.out[addr]; dup {
		n.outMu.Unlock()
		return errs.New(errs.P2PDupeConnect, "already connected to "+addr)
	}
	n.outMu.Unlock()

	identity := n.ourID[:]
	client, err := netfabric.Connect(ctx, identity, host, port, n.cfg.ProxyAddr)
	if err != nil {
		return err
	}

	o := &outgoing{client: client, state: awaitingHandshake, addr: addr}
	n.outMu.Lock()
	n.out[addr] = o
	n.outMu.Unlock()

	client.Send(Handshake{Version: Version, PeerID: n.ourID, PeerPort: n.cfg.Port}.Encode())
	return nil
}

// pollLoop is the sole writer of n.established: it reads
// inbound server frames and outbound client replies, applying the
// protocol state machine to each.
func (n *Node) pollLoop(ctx context.Context) {
	defer n.stopped.Done()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			frame, ok := n.server.Recv(n.stop)
			if !ok {
				return
			}
			n.handleServerFrame(frame)
		}
	}()

	for {
		select {
		case <-n.stop:
			wg.Wait()
			return
		case <-time.After(ThreadPollingInterval):
			n.pollClients()
		}
	}
}

func (n *Node) pollClients() {
	n.outMu.Lock()
	snapshot := make([]*outgoing, 0, len(n.out))
	for _, o := range n.out {
		snapshot = append(snapshot, o)
	}
	n.outMu.Unlock()

	for _, o := range snapshot {
		select {
		case <-n.stop:
			return
		default:
		}
		payload, ok := o.client.Recv(immediatelyReady())
		if !ok {
			continue
		}
		n.handleClientReply(o, payload)
	}
}

// immediatelyReady returns a channel that is already closed, so
// Queue.Pop used for polling doesn't block the scan across clients — each
// client gets a non-blocking peek per polling tick.
func immediatelyReady() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// handleServerFrame applies the server-side protocol rules to one
// inbound frame.
func (n *Node) handleServerFrame(frame netfabric.Frame) {
	pkt, err := DecodePacket(frame.Payload)
	if err != nil {
		log.Debugf("dropping undecodable frame from %x: %v", frame.From, err)
		return
	}

	switch pkt.Type {
	case TagHandshake:
		h := pkt.Handshake
		if h.Version < MinimumVersion {
			return
		}
		if h.PeerID == n.ourID {
			return
		}
		if len(h.Peers) > MaximumPeersExchanged {
			log.Warnf("protocol violation: oversized peer list from %x", frame.From)
			n.dropPeer(frame.From)
			return
		}
		if n.established.Contains(frame.From) {
			log.Warnf("protocol violation: repeat handshake from %x", frame.From)
			n.dropPeer(frame.From)
			return
		}
		n.established.Add(frame.From)
		n.recordPeer(h.PeerID, h.PeerPort, frame.ObservedAddress)
		n.server.Send(frame.From, Handshake{
			Version:  Version,
			PeerID:   n.ourID,
			PeerPort: n.cfg.Port,
			Peers:    n.peerSample(MaximumPeersExchanged),
		}.Encode())

	case TagPeerExchange:
		if !n.established.Contains(frame.From) {
			log.Warnf("protocol violation: PEER_EXCHANGE before handshake from %x", frame.From)
			n.dropPeer(frame.From)
			return
		}
		pe := pkt.PeerExchange
		if pe.Version < MinimumVersion || pe.PeerID == n.ourID {
			return
		}
		if len(pe.Peers) > MaximumPeersExchanged {
			log.Warnf("protocol violation: oversized peer list from %x", frame.From)
			n.dropPeer(frame.From)
			return
		}
		n.server.Send(frame.From, PeerExchange{
			Version:  Version,
			PeerID:   n.ourID,
			PeerPort: n.cfg.Port,
			Peers:    n.peerSample(MaximumPeersExchanged),
		}.Encode())

	case TagKeepalive:
		if !n.established.Contains(frame.From) {
			log.Warnf("protocol violation: KEEPALIVE before handshake from %x", frame.From)
			n.dropPeer(frame.From)
			return
		}
		k := pkt.Keepalive
		if k.Version < MinimumVersion || k.PeerID == n.ourID {
			return
		}
		_ = n.addrMgr.Touch(k.PeerID, time.Now())
		n.server.Send(frame.From, Keepalive{Version: Version, PeerID: n.ourID}.Encode())

	case TagData:
		if !n.established.Contains(frame.From) {
			log.Warnf("protocol violation: DATA before handshake from %x", frame.From)
			n.dropPeer(frame.From)
			return
		}
		n.handleData(pkt.Data)
	}
}

// dropPeer transitions identity to disconnected: it is no
// longer bookkept as established and the server forgets how to route to
// it, so it stops receiving broadcasts until it re-handshakes.
func (n *Node) dropPeer(identity string) {
	n.established.Remove(identity)
	n.server.Drop(identity)
}

// handleClientReply applies the client-side half of the state machine: a
// HANDSHAKE reply moves the connection to established, a PEER_EXCHANGE
// reply has its peers recorded, DATA goes through the same dedup and
// delivery as on the server side, and KEEPALIVE changes nothing.
func (n *Node) handleClientReply(o *outgoing, payload []byte) {
	pkt, err := DecodePacket(payload)
	if err != nil {
		return
	}
	switch pkt.Type {
	case TagHandshake:
		h := pkt.Handshake
		if h.Version < MinimumVersion || h.PeerID == n.ourID {
			return
		}
		o.state = established
		o.peerID = h.PeerID
		n.recordPeer(h.PeerID, h.PeerPort, o.addr)
	case TagPeerExchange:
		for _, p := range pkt.PeerExchange.Peers {
			n.recordPeer(p.PeerID, p.Port, ipString(p.IP))
		}
	case TagKeepalive:
		// liveness only; no state change required on the dialing side.
	case TagData:
		n.handleData(pkt.Data)
	}
}

func (n *Node) handleData(d Data) {
	h := chainhash.Sum("nyx/p2p-data-dedup", d.Payload)
	if _, seen := n.seen.Get(h); seen {
		return
	}
	n.seen.Add(h, struct{}{})
	if n.onData != nil {
		n.onData(d)
	}
}

func (n *Node) recordPeer(peerID chainhash.Hash, port uint16, observedAddr string) {
	if peerID == n.ourID {
		return
	}
	host, _, err := splitHostPort(observedAddr)
	if err != nil {
		host = observedAddr
	}
	_ = n.addrMgr.Add(addrmgr.Peer{
		IP:       []byte(host),
		Port:     port,
		PeerID:   peerID,
		LastSeen: uint64(time.Now().Unix()),
	}, time.Now())
}

func (n *Node) peerSample(max int) []PeerAddr {
	peers, err := n.addrMgr.Sample(max)
	if err != nil {
		return nil
	}
	out := make([]PeerAddr, 0, len(peers))
	for _, p := range peers {
		out = append(out, PeerAddr{IP: p.IP, Port: p.Port, PeerID: p.PeerID})
	}
	return out
}

// connMgrLoop is the connection manager periodic task: every
// ConnMgrInterval, if the number of entries in n.out falls short of the
// target, it dials sampled peers. It does not remove entries from n.out,
// so a client that has disconnected still counts toward the target.
func (n *Node) connMgrLoop(ctx context.Context) {
	defer n.stopped.Done()
	ticker := time.NewTicker(ConnMgrInterval)
	defer ticker.Stop()
	for {
		select {
		case <-n.stop:
			return
		case <-ticker.C:
			n.runConnMgr(ctx)
		}
	}
}

func (n *Node) runConnMgr(ctx context.Context) {
	target := len(n.cfg.SeedNodes) + len(n.cfg.OperatorSeeds) + defaultExtraConnections

	n.outMu.Lock()
	count := len(n.out)
	n.outMu.Unlock()

	if count >= target {
		return
	}
	need := target - count
	peers, err := n.addrMgr.Sample(need)
	if err != nil {
		return
	}
	for _, p := range peers {
		if p.PeerID == n.ourID {
			continue
		}
		_ = n.connectOutgoing(ctx, ipString(p.IP), p.Port)
	}
}

// keepaliveLoop sends a KEEPALIVE to every outgoing client and, via the
// server, to every connected incoming peer.
func (n *Node) keepaliveLoop(ctx context.Context) {
	defer n.stopped.Done()
	ticker := time.NewTicker(KeepaliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-n.stop:
			return
		case <-ticker.C:
			msg := Keepalive{Version: Version, PeerID: n.ourID}.Encode()
			n.outMu.Lock()
			for _, o := range n.out {
				o.client.Send(msg)
			}
			n.outMu.Unlock()
			n.server.Send("", msg)
		}
	}
}

// peerExchangeLoop sends a PEER_EXCHANGE to every outgoing client every
// PeerExchangeInterval, carrying at most MaximumPeersExchanged peers.
func (n *Node) peerExchangeLoop(ctx context.Context) {
	defer n.stopped.Done()
	ticker := time.NewTicker(PeerExchangeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-n.stop:
			return
		case <-ticker.C:
			msg := PeerExchange{
				Version:  Version,
				PeerID:   n.ourID,
				PeerPort: n.cfg.Port,
				Peers:    n.peerSample(MaximumPeersExchanged),
			}.Encode()
			n.outMu.Lock()
			for _, o := range n.out {
				o.client.Send(msg)
			}
			n.outMu.Unlock()
		}
	}
}

// Shutdown signals every worker to stop, closes the server, drops all
// clients, and waits for workers to join.
func (n *Node) Shutdown() {
	close(n.stop)
	n.stopped.Wait()

	n.outMu.Lock()
	for _, o := range n.out {
		_ = o.client.Close()
	}
	n.out = make(map[string]*outgoing)
	n.outMu.Unlock()

	if n.server != nil {
		_ = n.server.Close()
	}
}

func splitHostPort(addr string) (string, uint16, error) {
	i := len(addr) - 1
	for i >= 0 && addr[i] != ':' {
		i--
	}
	if i <= 0 {
		return "", 0, errs.New(errs.GenericFailure, "bad host:port "+addr)
	}
	var port uint16
	if _, err := fmt.Sscanf(addr[i+1:], "%d", &port); err != nil {
		return "", 0, errs.New(errs.GenericFailure, "bad host:port "+addr)
	}
	return addr[:i], port, nil
}

func ipString(ip []byte) string {
	if len(ip) == 4 {
		return fmt.Sprintf("%d.%d.%d.%d", ip[0], ip[1], ip[2], ip[3])
	}
	out := ""
	for i := 0; i < len(ip); i += 2 {
		if i > 0 {
			out += ":"
		}
		out += fmt.Sprintf("%x%x", ip[i], ip[i+1])
	}
	return out
}
