package protocol

import (
	"errors"
	"fmt"

	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
)

var (
	// ErrUnexpectedMessage is returned by HandleIncoming when a message cannot belong to the current session and round.
	// The returned error wraps it together with the reason.
	ErrUnexpectedMessage = errors.New("protocol: unexpected message")
	// ErrDuplicateMessage is returned when a different message was already received for the same slot.
	ErrDuplicateMessage = errors.New("protocol: duplicate message")
	// ErrNotReady is returned by Proceed when some messages of the current round are missing.
	ErrNotReady = errors.New("protocol: not all messages for the current round were received")
	// ErrFinished is returned when the protocol is used after it has finished.
	ErrFinished = errors.New("protocol: already finished")
	// ErrNotFinished is returned by Result before the protocol has finished.
	ErrNotFinished = errors.New("protocol: not finished")
)

// reasons wrapped with ErrUnexpectedMessage.
const (
	reasonNil           = "message is nil"
	reasonUnknownSender = "unknown sender"
	reasonSelf          = "message sent by self"
	reasonWrongSSID     = "SSID mismatch"
	reasonWrongProtocol = "wrong protocol ID"
	reasonDestination   = "message is not intended for selfID"
	reasonInvalidTo     = "broadcast flag is inconsistent with recipient"
	reasonRoundZero     = "no message is tagged with round 0"
	reasonStale         = "round already processed"
	reasonFuture        = "round is too far ahead"
	reasonNoBroadcast   = "no broadcast message expected in this round"
	reasonNoP2P         = "no point-to-point message expected in this round"
)

func unexpected(reason string) error {
	return fmt.Errorf("%w: %s", ErrUnexpectedMessage, reason)
}

// Error is a custom error for protocols which contains information about the responsible round in which it occurred,
// and the party responsible.
type Error struct {
	// RoundNumber where the error occurred
	RoundNumber round.Number
	// Culprit is 0 if the identity of the misbehaving party cannot be known
	Culprit party.ID
	// Err is the underlying error
	Err error
}

// Error implements error.
func (e Error) Error() string {
	if e.Culprit == 0 {
		return fmt.Sprintf("round %d: %s", e.RoundNumber, e.Err)
	}
	return fmt.Sprintf("round %d: party %s: %s", e.RoundNumber, e.Culprit, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e Error) Unwrap() error {
	return e.Err
}
