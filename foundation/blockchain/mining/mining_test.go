package mining_test

import (
	"testing"

	"github.com/ardanlabs/gambit/foundation/blockchain/address"
	"github.com/ardanlabs/gambit/foundation/blockchain/keys"
	"github.com/ardanlabs/gambit/foundation/blockchain/mining"
	"github.com/ardanlabs/gambit/foundation/blockchain/state"
	"github.com/ardanlabs/gambit/foundation/blockchain/transaction"
)

const (
	success = "✓"
	failed  = "✗"

	pkHexKeyA = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	pkHexKeyB = "8338d7a1c3e22bcaa62e6c3c1d45bf5fd2f6c2d25fd6d3a7e6dbea2b6b5f4d21"
)

func TestBuildDoesNotMutateCurrentState(t *testing.T) {
	t.Log("Given a state with a pending transaction to mine.")
	{
		kpA, _ := keys.FromPrivateKeyHex(pkHexKeyA)
		kpB, _ := keys.FromPrivateKeyHex(pkHexKeyB)

		current := state.New(map[address.Address]uint64{kpA.Address(): 1000})
		beforeRoot := current.Root()

		tx := transaction.Transaction{Nonce: 0, To: kpB.Address(), Value: 100, ChainID: 1337}
		tx.SignWith(kpA)

		b, next := mining.Build(1, "0x00", current, []transaction.Transaction{tx}, 1700000000)

		if current.Root() != beforeRoot {
			t.Fatalf("\t%s\tshould leave the passed-in state untouched", failed)
		}
		t.Logf("\t%s\tshould leave the passed-in state untouched", success)

		if len(b.Transactions) != 1 {
			t.Fatalf("\t%s\tshould include the applied transaction, got %d", failed, len(b.Transactions))
		}
		t.Logf("\t%s\tshould include the applied transaction", success)

		if next.Account(kpB.Address()).Balance != 100 {
			t.Fatalf("\t%s\tshould apply the transaction to the returned working state", failed)
		}
		t.Logf("\t%s\tshould apply the transaction to the returned working state", success)
	}
}

func TestBuildSetsReceiptsRoot(t *testing.T) {
	t.Log("Given blocks built with and without applied transactions.")
	{
		kpA, _ := keys.FromPrivateKeyHex(pkHexKeyA)
		kpB, _ := keys.FromPrivateKeyHex(pkHexKeyB)

		current := state.New(map[address.Address]uint64{kpA.Address(): 1000})

		empty, _ := mining.Build(1, "0x00", current, nil, 1700000000)
		if empty.ReceiptsRoot == "" {
			t.Fatalf("\t%s\tshould set a receipts root even for an empty block", failed)
		}
		t.Logf("\t%s\tshould set a receipts root even for an empty block", success)

		tx := transaction.Transaction{Nonce: 0, To: kpB.Address(), Value: 1, ChainID: 1337}
		tx.SignWith(kpA)
		nonEmpty, _ := mining.Build(1, "0x00", current, []transaction.Transaction{tx}, 1700000000)

		if nonEmpty.ReceiptsRoot == empty.ReceiptsRoot {
			t.Fatalf("\t%s\tshould compute a different receipts root when receipts differ", failed)
		}
		t.Logf("\t%s\tshould compute a different receipts root when receipts differ", success)
	}
}

func TestBuildSkipsInvalidCandidates(t *testing.T) {
	t.Log("Given a candidate transaction the sender cannot afford.")
	{
		kpA, _ := keys.FromPrivateKeyHex(pkHexKeyA)
		kpB, _ := keys.FromPrivateKeyHex(pkHexKeyB)

		current := state.New(map[address.Address]uint64{kpA.Address(): 5})

		tx := transaction.Transaction{Nonce: 0, To: kpB.Address(), Value: 100, ChainID: 1337}
		tx.SignWith(kpA)

		b, _ := mining.Build(1, "0x00", current, []transaction.Transaction{tx}, 1700000000)

		if len(b.Transactions) != 0 {
			t.Fatalf("\t%s\tshould exclude an unaffordable transaction, got %d", failed, len(b.Transactions))
		}
		t.Logf("\t%s\tshould exclude an unaffordable transaction", success)
	}
}
