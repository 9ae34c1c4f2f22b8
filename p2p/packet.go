// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"github.com/nyxchain/nyxd/chainhash"
	"github.com/nyxchain/nyxd/errs"
	"github.com/nyxchain/nyxd/wire"
)

// PacketType discriminates the four packet kinds, tagged
// in [1000, 3000].
type PacketType uint64

const (
	TagHandshake    PacketType = 1000
	TagPeerExchange PacketType = 1001
	TagKeepalive    PacketType = 1002
	TagData         PacketType = 1003
)

// MaximumPeersExchanged is the per-packet cap on the peers list
// carried by HANDSHAKE/PEER_EXCHANGE.
const MaximumPeersExchanged = 200

// PeerAddr is one entry of a HANDSHAKE/PEER_EXCHANGE peer list: just
// enough to dial or record the peer, without the last_seen bookkeeping
// field addrmgr.Peer carries once persisted.
type PeerAddr struct {
	IP     []byte
	Port   uint16
	PeerID chainhash.Hash
}

func (p PeerAddr) encode(e *wire.Encoder) {
	e.WriteVarBytes(p.IP)
	e.WriteFixed(wire.PutUint16LE(p.Port))
	e.WriteFixed(p.PeerID[:])
}

func decodePeerAddr(d *wire.Decoder) (PeerAddr, error) {
	ip, err := d.ReadVarBytes(16)
	if err != nil {
		return PeerAddr{}, err
	}
	portBytes, err := d.ReadFixed(2)
	if err != nil {
		return PeerAddr{}, err
	}
	idBytes, err := d.ReadFixed(chainhash.HashSize)
	if err != nil {
		return PeerAddr{}, err
	}
	id, err := chainhash.NewHash(idBytes)
	if err != nil {
		return PeerAddr{}, err
	}
	return PeerAddr{IP: ip, Port: wire.Uint16LE(portBytes), PeerID: *id}, nil
}

func encodePeerList(e *wire.Encoder, peers []PeerAddr) {
	e.WriteSeqHeader(len(peers))
	for _, p := range peers {
		p.encode(e)
	}
}

func decodePeerList(d *wire.Decoder) ([]PeerAddr, error) {
	n, err := d.ReadSeqHeader(0) // bound enforced by caller (protocol-violation semantics differ from a hard codec truncation)
	if err != nil {
		return nil, err
	}
	out := make([]PeerAddr, n)
	for i := range out {
		p, err := decodePeerAddr(d)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// Handshake is the first packet exchanged on a new connection.
type Handshake struct {
	Version  uint64
	PeerID   chainhash.Hash
	PeerPort uint16
	Peers    []PeerAddr
}

func (h Handshake) Encode() []byte {
	e := wire.NewEncoder()
	e.WriteVarint(uint64(TagHandshake))
	e.WriteVarint(h.Version)
	e.WriteFixed(h.PeerID[:])
	e.WriteFixed(wire.PutUint16LE(h.PeerPort))
	encodePeerList(e, h.Peers)
	return e.Bytes()
}

func decodeHandshakeBody(d *wire.Decoder) (Handshake, error) {
	var h Handshake
	v, err := d.ReadVarint()
	if err != nil {
		return h, err
	}
	idBytes, err := d.ReadFixed(chainhash.HashSize)
	if err != nil {
		return h, err
	}
	id, err := chainhash.NewHash(idBytes)
	if err != nil {
		return h, err
	}
	portBytes, err := d.ReadFixed(2)
	if err != nil {
		return h, err
	}
	peers, err := decodePeerList(d)
	if err != nil {
		return h, err
	}
	h = Handshake{Version: v, PeerID: *id, PeerPort: wire.Uint16LE(portBytes), Peers: peers}
	return h, nil
}

// PeerExchange mirrors Handshake's wire shape.
type PeerExchange struct {
	Version  uint64
	PeerID   chainhash.Hash
	PeerPort uint16
	Peers    []PeerAddr
}

func (p PeerExchange) Encode() []byte {
	e := wire.NewEncoder()
	e.WriteVarint(uint64(TagPeerExchange))
	e.WriteVarint(p.Version)
	e.WriteFixed(p.PeerID[:])
	e.WriteFixed(wire.PutUint16LE(p.PeerPort))
	encodePeerList(e, p.Peers)
	return e.Bytes()
}

func decodePeerExchangeBody(d *wire.Decoder) (PeerExchange, error) {
	h, err := decodeHandshakeBody(d)
	return PeerExchange(h), err
}

// Keepalive carries no payload beyond version and sender identity.
type Keepalive struct {
	Version uint64
	PeerID  chainhash.Hash
}

func (k Keepalive) Encode() []byte {
	e := wire.NewEncoder()
	e.WriteVarint(uint64(TagKeepalive))
	e.WriteVarint(k.Version)
	e.WriteFixed(k.PeerID[:])
	return e.Bytes()
}

func decodeKeepaliveBody(d *wire.Decoder) (Keepalive, error) {
	v, err := d.ReadVarint()
	if err != nil {
		return Keepalive{}, err
	}
	idBytes, err := d.ReadFixed(chainhash.HashSize)
	if err != nil {
		return Keepalive{}, err
	}
	id, err := chainhash.NewHash(idBytes)
	if err != nil {
		return Keepalive{}, err
	}
	return Keepalive{Version: v, PeerID: *id}, nil
}

// Data is the opaque envelope for gossipped ledger objects (transactions,
// blocks).
type Data struct {
	Version   uint64
	NetworkID uint64
	Payload   []byte
}

func (d Data) Encode() []byte {
	e := wire.NewEncoder()
	e.WriteVarint(uint64(TagData))
	e.WriteVarint(d.Version)
	e.WriteVarint(d.NetworkID)
	e.WriteVarBytes(d.Payload)
	return e.Bytes()
}

func decodeDataBody(d *wire.Decoder) (Data, error) {
	v, err := d.ReadVarint()
	if err != nil {
		return Data{}, err
	}
	netID, err := d.ReadVarint()
	if err != nil {
		return Data{}, err
	}
	payload, err := d.ReadVarBytes(0)
	if err != nil {
		return Data{}, err
	}
	return Data{Version: v, NetworkID: netID, Payload: payload}, nil
}

// Packet is the decoded union of every kind, dispatched by Type.
type Packet struct {
	Type         PacketType
	Handshake    Handshake
	PeerExchange PeerExchange
	Keepalive    Keepalive
	Data         Data
}

// DecodePacket reads the leading `varint type` then `varint version`
// shared by every packet, and routes to the matching kind's decoder.
func DecodePacket(b []byte) (Packet, error) {
	d := wire.NewDecoder(b)
	t, err := d.ReadVarint()
	if err != nil {
		return Packet{}, err
	}
	switch PacketType(t) {
	case TagHandshake:
		h, err := decodeHandshakeBody(d)
		if err != nil {
			return Packet{}, err
		}
		return Packet{Type: TagHandshake, Handshake: h}, nil
	case TagPeerExchange:
		pe, err := decodePeerExchangeBody(d)
		if err != nil {
			return Packet{}, err
		}
		return Packet{Type: TagPeerExchange, PeerExchange: pe}, nil
	case TagKeepalive:
		k, err := decodeKeepaliveBody(d)
		if err != nil {
			return Packet{}, err
		}
		return Packet{Type: TagKeepalive, Keepalive: k}, nil
	case TagData:
		data, err := decodeDataBody(d)
		if err != nil {
			return Packet{}, err
		}
		return Packet{Type: TagData, Data: data}, nil
	default:
		return Packet{}, errs.New(errs.BadTag, "unrecognized packet type")
	}
}
