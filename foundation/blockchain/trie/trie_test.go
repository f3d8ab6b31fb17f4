package trie_test

import (
	"math/rand"
	"testing"

	"github.com/ardanlabs/gambit/foundation/blockchain/trie"
)

const (
	success = "✓"
	failed  = "✗"
)

func TestEmptyTrieHasDefinedRoot(t *testing.T) {
	t.Log("Given two independently constructed empty tries.")
	{
		a := trie.New().Root()
		b := trie.New().Root()
		if a != b {
			t.Fatalf("\t%s\tshould produce the same root, got %x and %x", failed, a, b)
		}
		t.Logf("\t%s\tshould produce the same root %x", success, a)
	}
}

func TestDeterministicAcrossInsertionOrder(t *testing.T) {
	t.Log("Given the same key/value set inserted in different orders.")
	{
		entries := map[string]string{
			"alpha": "1",
			"bravo": "2",
			"charlie": "3",
			"delta": "4",
		}

		keys := make([]string, 0, len(entries))
		for k := range entries {
			keys = append(keys, k)
		}

		build := func(order []string) [32]byte {
			tr := trie.New()
			for _, k := range order {
				tr.Put([]byte(k), []byte(entries[k]))
			}
			return tr.Root()
		}

		first := build(keys)

		rand.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
		second := build(keys)

		if first != second {
			t.Fatalf("\t%s\tshould be order-independent, got %x and %x", failed, first, second)
		}
		t.Logf("\t%s\tshould be order-independent", success)
	}
}

func TestGetReturnsInsertedValue(t *testing.T) {
	t.Log("Given a value inserted at a key.")
	{
		tr := trie.New()
		tr.Put([]byte{0xAB, 0xCD}, []byte("value"))

		got, ok := tr.Get([]byte{0xAB, 0xCD})
		if !ok || string(got) != "value" {
			t.Fatalf("\t%s\tshould return the inserted value, got %q (ok=%v)", failed, got, ok)
		}
		t.Logf("\t%s\tshould return the inserted value", success)

		if _, ok := tr.Get([]byte{0xAB, 0xCE}); ok {
			t.Fatalf("\t%s\tshould report absence for an unset key", failed)
		}
		t.Logf("\t%s\tshould report absence for an unset key", success)
	}
}

func TestDifferentValuesProduceDifferentRoots(t *testing.T) {
	t.Log("Given two tries with different values at the same key.")
	{
		a := trie.New()
		a.Put([]byte("k"), []byte("v1"))

		b := trie.New()
		b.Put([]byte("k"), []byte("v2"))

		if a.Root() == b.Root() {
			t.Fatalf("\t%s\tshould produce different roots", failed)
		}
		t.Logf("\t%s\tshould produce different roots", success)
	}
}
