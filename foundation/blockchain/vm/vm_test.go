package vm_test

import (
	"testing"

	"github.com/ardanlabs/gambit/foundation/blockchain/address"
	"github.com/ardanlabs/gambit/foundation/blockchain/keys"
	"github.com/ardanlabs/gambit/foundation/blockchain/state"
	"github.com/ardanlabs/gambit/foundation/blockchain/transaction"
	"github.com/ardanlabs/gambit/foundation/blockchain/vm"
)

const (
	success = "✓"
	failed  = "✗"

	pkHexKeyA = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
)

func TestRegistryExecutesNativeTransfer(t *testing.T) {
	t.Log("Given a transaction targeting an address whose first byte selects the native engine.")
	{
		kpA, _ := keys.FromPrivateKeyHex(pkHexKeyA)

		to := address.Address{byte(vm.ContractNative), 1, 2, 3}
		s := state.New(map[address.Address]uint64{kpA.Address(): 1000})

		tx := transaction.Transaction{Nonce: 0, To: to, Value: 10, ChainID: 1337}
		if err := tx.SignWith(kpA); err != nil {
			t.Fatalf("should sign: %s", err)
		}

		r := vm.NewRegistry()
		if err := r.Execute(tx, s); err != nil {
			t.Fatalf("\t%s\tshould execute the native transfer: %s", failed, err)
		}
		t.Logf("\t%s\tshould execute the native transfer", success)

		if s.Account(to).Balance != 10 {
			t.Fatalf("\t%s\tshould credit the recipient", failed)
		}
		t.Logf("\t%s\tshould credit the recipient", success)
	}
}

func TestRegistryRejectsUnimplementedType(t *testing.T) {
	t.Log("Given a transaction targeting the reserved EVM contract type.")
	{
		kpA, _ := keys.FromPrivateKeyHex(pkHexKeyA)

		to := address.Address{byte(vm.ContractEVM), 1, 2, 3}
		s := state.New(map[address.Address]uint64{kpA.Address(): 1000})

		tx := transaction.Transaction{Nonce: 0, To: to, Value: 10, ChainID: 1337}
		if err := tx.SignWith(kpA); err != nil {
			t.Fatalf("should sign: %s", err)
		}

		r := vm.NewRegistry()
		if err := r.Execute(tx, s); err == nil {
			t.Fatalf("\t%s\tshould reject a contract type with no registered engine", failed)
		}
		t.Logf("\t%s\tshould reject a contract type with no registered engine", success)
	}
}
