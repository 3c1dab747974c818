package round

import "github.com/taurusgroup/threshold-ecdsa/pkg/party"

// Output is the terminal round of a successful execution. It holds the protocol's result.
type Output struct {
	*Helper
	Result interface{}
}

// Abort is the terminal round of an execution which detected misbehaviour.
// Culprits is empty when the faulty party cannot be identified.
type Abort struct {
	*Helper
	Culprits []party.ID
	Err      error
}

// Neither terminal round consumes or produces messages.

func (Output) VerifyMessage(Message) error                  { return nil }
func (Output) StoreMessage(Message) error                   { return nil }
func (Output) MessageContent() Content                      { return nil }
func (Output) Number() Number                               { return 0 }
func (r *Output) Finalize(chan<- *Message) (Session, error) { return r, nil }

func (Abort) VerifyMessage(Message) error                  { return nil }
func (Abort) StoreMessage(Message) error                   { return nil }
func (Abort) MessageContent() Content                      { return nil }
func (Abort) Number() Number                               { return 0 }
func (r *Abort) Finalize(chan<- *Message) (Session, error) { return r, nil }
