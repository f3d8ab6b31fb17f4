// Package transaction implements the signed value-transfer record
// this node's ledger operates on: its RLP signing/broadcast forms,
// signing, and signature-based validation.
package transaction

import (
	"fmt"

	"github.com/ardanlabs/gambit/foundation/blockchain/address"
	"github.com/ardanlabs/gambit/foundation/blockchain/codec/rlp"
	"github.com/ardanlabs/gambit/foundation/blockchain/hash"
	"github.com/ardanlabs/gambit/foundation/blockchain/keys"
)

// Transaction is a signed value-transfer record.
type Transaction struct {
	Nonce    uint64
	GasPrice uint64
	GasLimit uint64
	To       address.Address // zero address means contract-creation placeholder
	Value    uint64
	Data     []byte
	ChainID  uint64

	From address.Address
	Sig  keys.Signature

	// Hash is the cached keccak256 digest of the broadcast-form RLP,
	// computed once at signing or deserialization time.
	Hash string
}

func (tx Transaction) rlpSigningFields() [][]byte {
	return [][]byte{
		rlp.EncodeUint(tx.Nonce),
		rlp.EncodeUint(tx.GasPrice),
		rlp.EncodeUint(tx.GasLimit),
		rlp.EncodeBytes(toBytesOrEmpty(tx.To)),
		rlp.EncodeUint(tx.Value),
		rlp.EncodeBytes(tx.Data),
		rlp.EncodeUint(tx.ChainID),
		rlp.EncodeBytes(nil),
		rlp.EncodeBytes(nil),
	}
}

func toBytesOrEmpty(a address.Address) []byte {
	if a.IsZero() {
		return nil
	}
	return a[:]
}

// bytesToUint64 interprets b as a minimal big-endian unsigned integer,
// the form RLP uses for uint fields.
func bytesToUint64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

// RLPEncodeForSigning returns the 9-field EIP-155-style signing-form
// RLP encoding: [nonce, gasPrice, gasLimit, to, value, data, chainId, 0, 0].
func (tx Transaction) RLPEncodeForSigning() []byte {
	return rlp.EncodeList(tx.rlpSigningFields())
}

// SigningHash returns keccak256 of the signing-form RLP.
func (tx Transaction) SigningHash() [32]byte {
	return hash.Keccak256(tx.RLPEncodeForSigning())
}

// RLPEncodeSigned returns the broadcast-form RLP encoding, replacing
// the signing form's trailing (chainId, 0, 0) with (v_encoded, r, s).
func (tx Transaction) RLPEncodeSigned() []byte {
	fields := [][]byte{
		rlp.EncodeUint(tx.Nonce),
		rlp.EncodeUint(tx.GasPrice),
		rlp.EncodeUint(tx.GasLimit),
		rlp.EncodeBytes(toBytesOrEmpty(tx.To)),
		rlp.EncodeUint(tx.Value),
		rlp.EncodeBytes(tx.Data),
		rlp.EncodeUint(tx.Sig.V),
		rlp.EncodeBytes(tx.Sig.R[:]),
		rlp.EncodeBytes(tx.Sig.S[:]),
	}
	return rlp.EncodeList(fields)
}

// SignWith signs the transaction with kp, mixing chainID into V per
// EIP-155, sets From to the signer's address, and caches Hash.
func (tx *Transaction) SignWith(kp keys.KeyPair) error {
	digest := tx.SigningHash()

	sig, err := kp.Sign(digest)
	if err != nil {
		return fmt.Errorf("transaction: signing: %w", err)
	}
	sig.V = keys.EncodedV(byte(sig.V), tx.ChainID)

	tx.Sig = sig
	tx.From = kp.Address()

	broadcastDigest := hash.Keccak256(tx.RLPEncodeSigned())
	tx.Hash = hash.ToHex(broadcastDigest[:])

	return nil
}

// VerifySignature reports whether the transaction's signature
// recovers to a non-zero address equal to From (if From is
// pre-populated).
func (tx Transaction) VerifySignature() error {
	digest := tx.SigningHash()

	recovered, err := keys.RecoverAddress(digest, tx.Sig, tx.ChainID)
	if err != nil {
		return fmt.Errorf("transaction: %w", err)
	}
	if recovered.IsZero() {
		return fmt.Errorf("transaction: recovered zero address")
	}
	if !tx.From.IsZero() && tx.From != recovered {
		return fmt.Errorf("transaction: from address does not match recovered signer")
	}

	return nil
}

// ToHex serializes the signed transaction to 0x-prefixed ASCII hex of
// its broadcast-form RLP, the payload format used for NEW_TX gossip.
func (tx Transaction) ToHex() string {
	return hash.ToHex(tx.RLPEncodeSigned())
}

// FromHex deserializes a hex-encoded signed transaction, recovering
// ChainID from the encoded V and From from signature recovery.
func FromHex(hexStr string) (Transaction, error) {
	raw, err := hash.FromHex(hexStr)
	if err != nil {
		return Transaction{}, fmt.Errorf("transaction: %w", err)
	}

	decoded, err := rlp.Decode(raw)
	if err != nil {
		return Transaction{}, fmt.Errorf("transaction: %w", err)
	}
	if !decoded.IsList || len(decoded.Items) != 9 {
		return Transaction{}, fmt.Errorf("transaction: expected 9-field list, got %+v", decoded)
	}

	items := decoded.Items

	nonce := bytesToUint64(items[0].Bytes)
	gasPrice := bytesToUint64(items[1].Bytes)
	gasLimit := bytesToUint64(items[2].Bytes)

	var to address.Address
	if len(items[3].Bytes) > 0 {
		if len(items[3].Bytes) != address.Length {
			return Transaction{}, fmt.Errorf("transaction: malformed to address")
		}
		copy(to[:], items[3].Bytes)
	}

	value := bytesToUint64(items[4].Bytes)
	data := items[5].Bytes
	v := bytesToUint64(items[6].Bytes)

	if len(items[7].Bytes) != 32 || len(items[8].Bytes) != 32 {
		return Transaction{}, fmt.Errorf("transaction: malformed r/s length")
	}

	var chainID uint64
	if v >= 35 {
		chainID = (v - 35) / 2
	}

	tx := Transaction{
		Nonce:    nonce,
		GasPrice: gasPrice,
		GasLimit: gasLimit,
		To:       to,
		Value:    value,
		Data:     data,
		ChainID:  chainID,
	}
	copy(tx.Sig.R[:], items[7].Bytes)
	copy(tx.Sig.S[:], items[8].Bytes)
	tx.Sig.V = v

	from, err := keys.RecoverAddress(tx.SigningHash(), tx.Sig, tx.ChainID)
	if err != nil {
		return Transaction{}, fmt.Errorf("transaction: recovering sender: %w", err)
	}
	tx.From = from

	broadcastDigest := hash.Keccak256(tx.RLPEncodeSigned())
	tx.Hash = hash.ToHex(broadcastDigest[:])

	return tx, nil
}
