package zkproof_test

import (
	"testing"

	"github.com/ardanlabs/gambit/foundation/blockchain/zkproof"
)

const (
	success = "✓"
	failed  = "✗"
)

func TestGenerateVerifyRoundTrip(t *testing.T) {
	t.Log("Given a state transition and a generated proof.")
	{
		p := zkproof.Generate("0xbefore", "0xafter", "0xtxroot")
		if !zkproof.Verify(p) {
			t.Fatalf("\t%s\tshould verify a freshly generated proof", failed)
		}
		t.Logf("\t%s\tshould verify a freshly generated proof", success)
	}
}

func TestMutationBreaksVerification(t *testing.T) {
	fields := func(p zkproof.Proof, mutate func(*zkproof.Proof)) zkproof.Proof {
		mutate(&p)
		return p
	}

	t.Log("Given a valid proof with a single field mutated.")
	{
		base := zkproof.Generate("0xbefore", "0xafter", "0xtxroot")

		mutations := []func(*zkproof.Proof){
			func(p *zkproof.Proof) { p.Proof = p.Proof + "f" },
			func(p *zkproof.Proof) { p.StateBefore = "0xtampered" },
			func(p *zkproof.Proof) { p.StateAfter = "0xtampered" },
			func(p *zkproof.Proof) { p.TxRoot = "0xtampered" },
			func(p *zkproof.Proof) { p.Commitment = "0xtampered" },
		}

		for i, mutate := range mutations {
			mutated := fields(base, mutate)
			if zkproof.Verify(mutated) {
				t.Errorf("\t%s\tmutation %d should break verification", failed, i)
				continue
			}
			t.Logf("\t%s\tmutation %d breaks verification", success, i)
		}
	}
}
