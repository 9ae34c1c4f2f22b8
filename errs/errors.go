// Copyright (c) 2021-2026 The Nyx developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package errs defines the single error-kind enumeration shared by every
// core package: one flat error-code space rather than per-package error
// types, so any failure can be rendered as a stable (code, message) pair.
package errs

import "fmt"

// Kind enumerates the error kinds surfaced by the core.
type Kind int

const (
	Success Kind = iota
	DBEmpty
	GenericFailure
	Base58Decode
	AddressPrefixMismatch
	NotAPublicKey
	DBError
	DBKeyNotFound
	UnknownTransactionType
	GlobalIndexOutOfBounds
	BlockNotFound
	TransactionNotFound
	BlockDoesNotChain
	BlockAlreadyExists
	BlockTxnOrder
	StakingCandidateNotFound
	StakingStakerNotFound
	DeserializationError
	BlockTransactionsMismatch
	P2PDupeConnect
	P2PSeedConnect
	UPNPNotSupported
	UPNPFailure
	ZMQBindFailure
	ZMQConnectFailure
	HTTPBodyRequiredButNotFound
	JSONDeserializationError

	// Codec- and protocol-level kinds, kept in the same flat space rather
	// than a separate enum so any call site can return a single errs.Error.
	ShortRead
	OverlongVarint
	BadKey
	BadTag
	InvalidSignature
	TooManyOutputs
	TooFewOutputs
	ExtraTooLarge
	ProtocolViolation
	ConnectFailure
	CandidateNotFound
	MapFull
)

var kindStrings = map[Kind]string{
	Success:                     "success",
	DBEmpty:                     "db_empty",
	GenericFailure:              "generic_failure",
	Base58Decode:                "base58_decode",
	AddressPrefixMismatch:       "address_prefix_mismatch",
	NotAPublicKey:               "not_a_public_key",
	DBError:                     "db_error",
	DBKeyNotFound:               "db_key_not_found",
	UnknownTransactionType:      "unknown_transaction_type",
	GlobalIndexOutOfBounds:      "global_index_out_of_bounds",
	BlockNotFound:               "block_not_found",
	TransactionNotFound:         "transaction_not_found",
	BlockDoesNotChain:           "block_does_not_chain",
	BlockAlreadyExists:          "block_already_exists",
	BlockTxnOrder:               "block_txn_order",
	StakingCandidateNotFound:    "staking_candidate_not_found",
	StakingStakerNotFound:       "staking_staker_not_found",
	DeserializationError:        "deserialization_error",
	BlockTransactionsMismatch:   "block_transactions_mismatch",
	P2PDupeConnect:              "p2p_dupe_connect",
	P2PSeedConnect:              "p2p_seed_connect",
	UPNPNotSupported:            "upnp_not_supported",
	UPNPFailure:                 "upnp_failure",
	ZMQBindFailure:              "zmq_bind_failure",
	ZMQConnectFailure:           "zmq_connect_failure",
	HTTPBodyRequiredButNotFound: "http_body_required_but_not_found",
	JSONDeserializationError:    "json_deserialization_error",
	ShortRead:                   "short_read",
	OverlongVarint:              "overlong_varint",
	BadKey:                      "bad_key",
	BadTag:                      "bad_tag",
	InvalidSignature:            "invalid_sig",
	TooManyOutputs:              "too_many_outputs",
	TooFewOutputs:               "too_few_outputs",
	ExtraTooLarge:               "extra_too_large",
	ProtocolViolation:           "protocol_violation",
	ConnectFailure:              "connect_failure",
	CandidateNotFound:           "candidate_not_found",
	MapFull:                     "map_full",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if s, ok := kindStrings[k]; ok {
		return s
	}
	return fmt.Sprintf("unknown_error_kind(%d)", int(k))
}

// Error is the (code, message) pair surfaced for user-visible failures,
// suitable for direct JSON rendering by httpapi.
type Error struct {
	Kind        Kind   `json:"code"`
	Description string `json:"message"`
}

func (e *Error) Error() string {
	if e.Description == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Description)
}

// New constructs an *Error, the sole way core packages produce these
// errors.
func New(kind Kind, description string) *Error {
	return &Error{Kind: kind, Description: description}
}

// Is reports whether err is an *Error with the given Kind, for use with
// errors.Is-style call sites (err here is already a concrete *Error in every
// call site in this repo, so a direct type assertion suffices).
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
