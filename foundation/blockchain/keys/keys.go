// Package keys provides secp256k1 key generation, message signing,
// and EIP-155-style chain-bound signature recovery.
package keys

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ardanlabs/gambit/foundation/blockchain/address"
)

// Signature is a compact secp256k1 signature: a 32-byte r, a 32-byte
// s, and a recovery discriminant v.
//
// For a raw (non-EIP-155) signature, V is the recovery id itself,
// 0 or 1. Once mixed with a chain identifier for persistence with a
// signed transaction, V becomes recId + 35 + 2*chainId; EncodedV and
// DecodeV perform that translation.
type Signature struct {
	R [32]byte
	S [32]byte
	V uint64
}

// EncodedV returns the EIP-155 chain-bound encoding of a raw
// recovery id: recId + 35 + 2*chainId.
func EncodedV(recID byte, chainID uint64) uint64 {
	return uint64(recID) + 35 + 2*chainID
}

// DecodeV extracts the recovery id and chain id from an EIP-155
// encoded v value. Values of 0 or 1 are treated as raw, pre-EIP-155
// recovery ids with chainID 0.
func DecodeV(v uint64) (recID byte, chainID uint64, err error) {
	if v == 0 || v == 1 {
		return byte(v), 0, nil
	}
	if v < 35 {
		return 0, 0, fmt.Errorf("keys: unsupported v value %d", v)
	}
	chainID = (v - 35) / 2
	recID = byte(v - (35 + 2*chainID))
	return recID, chainID, nil
}

// KeyPair is a secp256k1 private/public key pair.
type KeyPair struct {
	priv *ecdsa.PrivateKey
}

// Random generates a new key pair, retrying internally (via
// crypto.GenerateKey) until a valid scalar in [1, n-1] is found.
func Random() (KeyPair, error) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		return KeyPair{}, fmt.Errorf("keys: generating key: %w", err)
	}
	return KeyPair{priv: priv}, nil
}

// FromPrivateKeyHex loads a key pair from a hex-encoded 32-byte
// private key scalar.
func FromPrivateKeyHex(hexKey string) (KeyPair, error) {
	priv, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return KeyPair{}, fmt.Errorf("keys: parsing private key: %w", err)
	}
	return KeyPair{priv: priv}, nil
}

// PublicKeyBytes returns the 64-byte uncompressed public key (x||y,
// no leading 0x04 prefix).
func (k KeyPair) PublicKeyBytes() []byte {
	return crypto.FromECDSAPub(&k.priv.PublicKey)[1:]
}

// Address derives the Address for this key pair.
func (k KeyPair) Address() address.Address {
	a, _ := address.FromPublicKey(k.PublicKeyBytes())
	return a
}

// PrivateKeyHex returns the hex-encoded 32-byte private key scalar,
// the form FromPrivateKeyHex accepts back.
func (k KeyPair) PrivateKeyHex() string {
	return fmt.Sprintf("%x", crypto.FromECDSA(k.priv))
}

// Sign produces a signature over a 32-byte message digest. The
// returned signature carries the raw recovery id (0 or 1); chainID
// mixing happens at the transaction layer via EncodedV.
func (k KeyPair) Sign(digest [32]byte) (Signature, error) {
	sig, err := crypto.Sign(digest[:], k.priv)
	if err != nil {
		return Signature{}, fmt.Errorf("keys: signing: %w", err)
	}

	var out Signature
	copy(out.R[:], sig[:32])
	copy(out.S[:], sig[32:64])
	out.V = uint64(sig[64])
	return out, nil
}

// Verify reports whether sig is a valid, low-s-normalized signature
// over digest by the holder of pubKey (64-byte uncompressed, no
// 0x04 prefix).
func Verify(digest [32]byte, sig Signature, pubKey []byte) (bool, error) {
	if len(pubKey) != 64 {
		return false, fmt.Errorf("keys: public key must be 64 bytes, got %d", len(pubKey))
	}

	r := new(big.Int).SetBytes(sig.R[:])
	s := new(big.Int).SetBytes(sig.S[:])
	if !crypto.ValidateSignatureValues(byte(sig.V&1), r, s, false) {
		return false, errors.New("keys: invalid signature values")
	}

	full := make([]byte, 65)
	copy(full[1:], pubKey)
	full[0] = 0x04

	rs := make([]byte, 64)
	copy(rs[:32], sig.R[:])
	copy(rs[32:], sig.S[:])

	return crypto.VerifySignature(full, digest[:], rs), nil
}

// RecoverAddress recovers the signer address from a message digest
// and signature, applying the chain-identifier-aware v-decoding rule
// described in DecodeV. chainID is the network's configured chain
// identifier; it is checked against the signature's encoded chain id
// whenever the signature carries an EIP-155-mixed v.
func RecoverAddress(digest [32]byte, sig Signature, chainID uint64) (address.Address, error) {
	recID, sigChainID, err := DecodeV(sig.V)
	if err != nil {
		return address.Address{}, fmt.Errorf("keys: recovering address: %w", err)
	}
	if sig.V != 0 && sig.V != 1 && sigChainID != chainID {
		return address.Address{}, fmt.Errorf("keys: chainId mismatch: signature has %d, expected %d", sigChainID, chainID)
	}

	compact := make([]byte, 65)
	copy(compact[:32], sig.R[:])
	copy(compact[32:64], sig.S[:])
	compact[64] = recID

	pub, err := crypto.Ecrecover(digest[:], compact)
	if err != nil {
		return address.Address{}, fmt.Errorf("keys: recover failed: %w", err)
	}

	addr, err := address.FromPublicKey(pub[1:])
	if err != nil {
		return address.Address{}, fmt.Errorf("keys: deriving address: %w", err)
	}
	return addr, nil
}
