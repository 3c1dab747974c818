package round

import "errors"

// Round is a single step of a round-based protocol.
type Round interface {
	// VerifyMessage handles an incoming point-to-point Message and validates its content with regard to the protocol specification.
	// The content argument can be cast to the appropriate type for this round without error check.
	// In the first round, this function returns nil.
	// This function should not modify any saved state as it may be running concurrently.
	VerifyMessage(msg Message) error

	// StoreMessage should be called after VerifyMessage and should only store the appropriate fields from the
	// content.
	StoreMessage(msg Message) error

	// Finalize is called after all messages from the parties have been processed in the current round.
	// Messages for the next round are sent out through the out channel.
	// If a non-critical error occurs (like a failure to sample, hash, or send a message), the current round can be
	// returned so that the caller may try to finalize again.
	//
	// In the last round, Finalize returns the result of Helper.ResultRound,
	// or the result of Helper.AbortRound if misbehaviour was detected.
	Finalize(out chan<- *Message) (Session, error)

	// MessageContent returns an uninitialized message.Content for this round.
	//
	// A round which expects no point-to-point message returns nil.
	MessageContent() Content

	// Number returns the current round number.
	Number() Number
}

// BroadcastRound extends Round in that it expects a broadcast message before the p2p message.
type BroadcastRound interface {
	// StoreBroadcastMessage must be run before Round.VerifyMessage and Round.StoreMessage,
	// since those may depend on the content from the broadcast.
	// It changes the round's state to store the message after performing basic validation.
	StoreBroadcastMessage(msg Message) error

	// BroadcastContent returns an uninitialized BroadcastContent for this round.
	BroadcastContent() BroadcastContent
}

var (
	// ErrInvalidContent is returned when the content of a message cannot be cast to the expected type.
	ErrInvalidContent = errors.New("round: content is not the expected type")
	// ErrNilFields is returned when a message is missing some of its fields.
	ErrNilFields = errors.New("round: message contained empty fields")
	// ErrOutChanFull is returned when a round could not queue an outgoing message.
	ErrOutChanFull = errors.New("round: out channel is full")
)
