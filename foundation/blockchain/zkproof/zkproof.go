// Package zkproof implements the self-consistent proof-commitment
// stub this core uses in lieu of a real zero-knowledge prover. It is
// deliberately not a real prover: it exists so the block structure
// and chain-append rules already admit one later.
package zkproof

import (
	"github.com/ardanlabs/gambit/foundation/blockchain/hash"
)

// Proof is an opaque commitment structure covering a state
// transition: Commitment = keccak256(Proof || StateBefore ||
// StateAfter || TxRoot).
type Proof struct {
	Proof       string
	StateBefore string
	StateAfter  string
	TxRoot      string
	Commitment  string
}

// Generate produces a proof for the state transition stateBefore ->
// stateAfter committing to txRoot. The proof blob itself is a
// deterministic digest of the three inputs; only Commitment is ever
// checked by Verify.
func Generate(stateBefore, stateAfter, txRoot string) Proof {
	blob := hash.Keccak256([]byte(stateBefore), []byte(stateAfter), []byte(txRoot))
	proof := hash.ToHex(blob[:])

	commitment := hash.Keccak256(
		[]byte(proof),
		[]byte(stateBefore),
		[]byte(stateAfter),
		[]byte(txRoot),
	)

	return Proof{
		Proof:       proof,
		StateBefore: stateBefore,
		StateAfter:  stateAfter,
		TxRoot:      txRoot,
		Commitment:  hash.ToHex(commitment[:]),
	}
}

// Verify recomputes the commitment from p's fields and reports
// whether it matches p.Commitment.
func Verify(p Proof) bool {
	commitment := hash.Keccak256(
		[]byte(p.Proof),
		[]byte(p.StateBefore),
		[]byte(p.StateAfter),
		[]byte(p.TxRoot),
	)
	return hash.ToHex(commitment[:]) == p.Commitment
}
