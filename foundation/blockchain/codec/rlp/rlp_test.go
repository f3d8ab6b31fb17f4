package rlp_test

import (
	"bytes"
	"testing"

	"github.com/ardanlabs/gambit/foundation/blockchain/codec/rlp"
)

const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestEncodeBytesRoundTrip(t *testing.T) {
	t.Log("Given the need to round-trip byte strings through RLP.")
	{
		inputs := [][]byte{
			{},
			{0x00},
			{0x7f},
			{0x80},
			[]byte("dog"),
			bytes.Repeat([]byte{0x11}, 100),
		}

		for i, in := range inputs {
			t.Logf("\tTest %d:\tWhen encoding %x", i, in)
			{
				enc := rlp.EncodeBytes(in)
				got, err := rlp.DecodeBytes(enc)
				if err != nil {
					t.Fatalf("\t%s\tshould decode without error: %s", failed, err)
				}
				if !bytes.Equal(got, in) {
					t.Errorf("\t%s\tshould round-trip to %x, got %x", failed, in, got)
				} else {
					t.Logf("\t%s\tshould round-trip", success)
				}
			}
		}
	}
}

func TestEncodeBytesSmallValueSelfEncodes(t *testing.T) {
	t.Log("Given a single byte below 0x80.")
	{
		got := rlp.EncodeBytes([]byte{0x00})
		want := []byte{0x00}
		if !bytes.Equal(got, want) {
			t.Fatalf("\t%s\tshould encode to itself, got %x", failed, got)
		}
		t.Logf("\t%s\tshould encode to itself", success)
	}
}

func TestEncodeEmptyStringAndList(t *testing.T) {
	t.Log("Given the empty string and empty list.")
	{
		if got := rlp.EncodeBytes(nil); !bytes.Equal(got, []byte{0x80}) {
			t.Errorf("\t%s\tempty string should encode to 0x80, got %x", failed, got)
		} else {
			t.Logf("\t%s\tempty string encodes to 0x80", success)
		}

		if got := rlp.EncodeList(nil); !bytes.Equal(got, []byte{0xC0}) {
			t.Errorf("\t%s\tempty list should encode to 0xC0, got %x", failed, got)
		} else {
			t.Logf("\t%s\tempty list encodes to 0xC0", success)
		}
	}
}

func TestEncodeUint(t *testing.T) {
	tests := []struct {
		value uint64
		want  []byte
	}{
		{0, []byte{0x80}},
		{1024, []byte{0x82, 0x04, 0x00}},
	}

	t.Log("Given the need to encode unsigned integers canonically.")
	for i, tt := range tests {
		t.Logf("\tTest %d:\tWhen encoding %d", i, tt.value)
		{
			got := rlp.EncodeUint(tt.value)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("\t%s\tshould encode to %x, got %x", failed, tt.want, got)
				continue
			}
			t.Logf("\t%s\tshould encode to %x", success, tt.want)

			roundTripped, err := rlp.DecodeUint(got)
			if err != nil || roundTripped != tt.value {
				t.Errorf("\t%s\tshould decode back to %d, got %d (err=%v)", failed, tt.value, roundTripped, err)
			} else {
				t.Logf("\t%s\tshould decode back to %d", success, tt.value)
			}
		}
	}
}

func TestEncodeListRoundTrip(t *testing.T) {
	t.Log("Given the need to round-trip a list of items through RLP.")
	{
		items := [][]byte{
			rlp.EncodeBytes([]byte("cat")),
			rlp.EncodeBytes([]byte("dog")),
			rlp.EncodeUint(42),
		}

		enc := rlp.EncodeList(items)
		decoded, err := rlp.Decode(enc)
		if err != nil {
			t.Fatalf("\t%s\tshould decode without error: %s", failed, err)
		}
		if !decoded.IsList || len(decoded.Items) != len(items) {
			t.Fatalf("\t%s\tshould reproduce a %d-item list, got %+v", failed, len(items), decoded)
		}

		if string(decoded.Items[0].Bytes) != "cat" || string(decoded.Items[1].Bytes) != "dog" {
			t.Errorf("\t%s\tshould reproduce item values", failed)
		} else {
			t.Logf("\t%s\tshould reproduce item values", success)
		}
	}
}

func TestDecodeRejectsOverrun(t *testing.T) {
	t.Log("Given a length-prefixed string claiming more bytes than available.")
	{
		malformed := []byte{0x83, 0x01, 0x02} // claims 3 bytes, only 2 present
		if _, err := rlp.Decode(malformed); err == nil {
			t.Fatalf("\t%s\tshould reject an over-length buffer", failed)
		}
		t.Logf("\t%s\tshould reject an over-length buffer", success)
	}
}
