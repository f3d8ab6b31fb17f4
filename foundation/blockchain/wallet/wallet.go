// Package wallet defines the signer boundary an external wallet
// process crosses to request a signature from this core: this node
// never implements key custody or a signing CLI.
package wallet

import "github.com/ardanlabs/gambit/foundation/blockchain/keys"

// Signer is anything able to produce a signature over a digest.
// keys.KeyPair implements it; an external wallet process is treated
// purely as "anything implementing Signer".
type Signer interface {
	Sign(digest [32]byte) (keys.Signature, error)
}
