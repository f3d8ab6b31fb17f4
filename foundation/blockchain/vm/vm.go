// Package vm implements the execution-engine dispatch stub: a Registry
// that routes a transaction to an engine keyed by a tagged
// discriminant, with only plain value transfer wired up. The chain and
// mining packages call state.ApplyTransaction directly and do not go
// through this Registry.
package vm

import (
	"fmt"

	"github.com/ardanlabs/gambit/foundation/blockchain/state"
	"github.com/ardanlabs/gambit/foundation/blockchain/transaction"
)

// ContractType tags which execution engine a transaction targets,
// derived from the first byte of tx.To.
type ContractType uint8

const (
	ContractEVM  ContractType = 0 // reserved
	ContractWASM ContractType = 1 // reserved
	ContractNative ContractType = 2
	ContractPluginBase ContractType = 128 // 128+offset: plugin slots, unimplemented
)

// TargetType derives the discriminant from a transaction's To address.
func TargetType(tx transaction.Transaction) ContractType {
	return ContractType(tx.To[0])
}

// Engine executes a transaction against state.
type Engine interface {
	Execute(tx transaction.Transaction, s *state.State) error
}

type nativeEngine struct{}

// Execute performs a plain value transfer via state.ApplyTransaction.
func (nativeEngine) Execute(tx transaction.Transaction, s *state.State) error {
	return s.ApplyTransaction(tx)
}

// Registry dispatches a transaction to the engine registered for its
// ContractType.
type Registry struct {
	engines map[ContractType]Engine
}

// NewRegistry constructs a Registry with only the native engine
// wired: EVM, WASM, and plugin slots are reserved but unimplemented.
func NewRegistry() *Registry {
	return &Registry{
		engines: map[ContractType]Engine{
			ContractNative: nativeEngine{},
		},
	}
}

// Execute routes tx to the engine for its target type, or fails
// closed if that type has no registered engine — no transaction is
// ever partially executed by a stub.
func (r *Registry) Execute(tx transaction.Transaction, s *state.State) error {
	typ := TargetType(tx)

	engine, ok := r.engines[typ]
	if !ok {
		return fmt.Errorf("vm: contract type %d not implemented", typ)
	}
	return engine.Execute(tx, s)
}
