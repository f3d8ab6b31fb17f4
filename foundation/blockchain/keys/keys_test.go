package keys_test

import (
	"testing"

	"github.com/ardanlabs/gambit/foundation/blockchain/hash"
	"github.com/ardanlabs/gambit/foundation/blockchain/keys"
)

const (
	success = "✓"
	failed  = "✗"

	pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	chainID  = uint64(1337)
)

func digestOf(s string) [32]byte {
	return hash.Keccak256([]byte(s))
}

func TestSignRecoverRoundTrip(t *testing.T) {
	t.Log("Given the need to recover a signer's address from a signature.")
	{
		kp, err := keys.FromPrivateKeyHex(pkHexKey)
		if err != nil {
			t.Fatalf("\t%s\tshould load the private key: %s", failed, err)
		}

		digest := digestOf("hello")
		sig, err := kp.Sign(digest)
		if err != nil {
			t.Fatalf("\t%s\tshould sign the digest: %s", failed, err)
		}
		sig.V = keys.EncodedV(byte(sig.V), chainID)

		ok, err := keys.Verify(digest, sig, kp.PublicKeyBytes())
		if err != nil || !ok {
			t.Fatalf("\t%s\tshould verify the signature (err=%v)", failed, err)
		}
		t.Logf("\t%s\tshould verify the signature", success)

		got, err := keys.RecoverAddress(digest, sig, chainID)
		if err != nil {
			t.Fatalf("\t%s\tshould recover an address: %s", failed, err)
		}
		if got != kp.Address() {
			t.Fatalf("\t%s\tshould recover %s, got %s", failed, kp.Address(), got)
		}
		t.Logf("\t%s\tshould recover the signer's address", success)
	}
}

func TestRecoverFailsOnWrongChainID(t *testing.T) {
	t.Log("Given a signature encoded for one chain id.")
	{
		kp, _ := keys.FromPrivateKeyHex(pkHexKey)
		digest := digestOf("hello")
		sig, _ := kp.Sign(digest)
		sig.V = keys.EncodedV(byte(sig.V), chainID)

		if _, err := keys.RecoverAddress(digest, sig, chainID+1); err == nil {
			t.Fatalf("\t%s\tshould fail recovery under a mismatched chain id", failed)
		}
		t.Logf("\t%s\tshould fail recovery under a mismatched chain id", success)
	}
}

func TestRecoverFailsOnDifferentDigest(t *testing.T) {
	t.Log("Given a signature over one digest, verified against another.")
	{
		kp, _ := keys.FromPrivateKeyHex(pkHexKey)
		digest := digestOf("hello")
		other := digestOf("goodbye")

		sig, _ := kp.Sign(digest)
		sig.V = keys.EncodedV(byte(sig.V), chainID)

		if ok, _ := keys.Verify(other, sig, kp.PublicKeyBytes()); ok {
			t.Fatalf("\t%s\tshould not verify against a different digest", failed)
		}
		t.Logf("\t%s\tshould not verify against a different digest", success)

		if got, err := keys.RecoverAddress(other, sig, chainID); err == nil && got == kp.Address() {
			t.Fatalf("\t%s\tshould not recover the original address from a different digest", failed)
		}
		t.Logf("\t%s\tshould not recover the original address from a different digest", success)
	}
}
