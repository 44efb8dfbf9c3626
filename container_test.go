package deltac

import (
	"bytes"
	"testing"
)

func TestEncodeDecodePlacedRoundTrip(t *testing.T) {
	placed := []PlacedCommand{
		placedCopy(100, 0, 50),
		placedAdd(50, []byte("hello")),
		placedCopy(200, 55, 30),
	}
	srcHash := bytes.Repeat([]byte{0x00}, HashSize)
	dstHash := bytes.Repeat([]byte{0xff}, HashSize)

	out, err := EncodeContainer(placed, false, 85, srcHash, dstHash)
	if err != nil {
		t.Fatalf("EncodeContainer: %v", err)
	}

	got, inPlace, versionSize, sh, dh, err := DecodeContainer(out)
	if err != nil {
		t.Fatalf("DecodeContainer: %v", err)
	}
	if inPlace {
		t.Error("inPlace = true, want false")
	}
	if versionSize != 85 {
		t.Errorf("versionSize = %d, want 85", versionSize)
	}
	if !bytes.Equal(sh, srcHash) || !bytes.Equal(dh, dstHash) {
		t.Errorf("hash fields did not round-trip")
	}
	if len(got) != 3 {
		t.Fatalf("len(got) = %d, want 3", len(got))
	}
	if got[0].Kind != KindCopy || got[0].Src != 100 || got[0].Dst != 0 || got[0].Length != 50 {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].Kind != KindAdd || got[1].Dst != 50 || !bytes.Equal(got[1].Data, []byte("hello")) {
		t.Errorf("got[1] = %+v", got[1])
	}
	if got[2].Kind != KindCopy {
		t.Errorf("got[2].Kind = %v, want KindCopy", got[2].Kind)
	}
}

func TestEncodeContainerInPlaceFlag(t *testing.T) {
	placed := []PlacedCommand{placedCopy(0, 10, 5)}
	h := bytes.Repeat([]byte{0x01}, HashSize)
	out, err := EncodeContainer(placed, true, 15, h, h)
	if err != nil {
		t.Fatalf("EncodeContainer: %v", err)
	}
	_, inPlace, _, _, _, err := DecodeContainer(out)
	if err != nil {
		t.Fatalf("DecodeContainer: %v", err)
	}
	if !inPlace {
		t.Error("inPlace flag did not round-trip as true")
	}
}

func TestEncodeContainerMagicAndHeaderSize(t *testing.T) {
	h := bytes.Repeat([]byte{0x02}, HashSize)
	out, err := EncodeContainer(nil, false, 0, h, h)
	if err != nil {
		t.Fatalf("EncodeContainer: %v", err)
	}
	if !bytes.Equal(out[:4], Magic[:]) {
		t.Errorf("magic = %v, want %v", out[:4], Magic)
	}
	// header + END byte, no records.
	if want := headerSize() + 1; len(out) != want {
		t.Errorf("len(out) = %d, want %d", len(out), want)
	}
}

func TestDecodeContainerRejectsBadMagic(t *testing.T) {
	h := bytes.Repeat([]byte{0x03}, HashSize)
	out, _ := EncodeContainer(nil, false, 0, h, h)
	out[0] = 'X'
	if _, _, _, _, _, err := DecodeContainer(out); err == nil {
		t.Fatal("DecodeContainer accepted corrupted magic")
	}
}

func TestDecodeContainerRejectsTruncatedStream(t *testing.T) {
	h := bytes.Repeat([]byte{0x04}, HashSize)
	placed := []PlacedCommand{placedAdd(0, []byte("abcdef"))}
	out, _ := EncodeContainer(placed, false, 6, h, h)
	truncated := out[:len(out)-3]
	if _, _, _, _, _, err := DecodeContainer(truncated); err == nil {
		t.Fatal("DecodeContainer accepted a truncated add payload")
	}
}

func TestEncodeContainerRejectsBadHashSize(t *testing.T) {
	if _, err := EncodeContainer(nil, false, 0, []byte{1, 2, 3}, make([]byte, HashSize)); err == nil {
		t.Fatal("EncodeContainer accepted a short source hash")
	}
}

func TestLargeCopyRoundTrip(t *testing.T) {
	h := bytes.Repeat([]byte{0x05}, HashSize)
	placed := []PlacedCommand{placedCopy(100000, 0, 50000)}
	out, err := EncodeContainer(placed, false, 50000, h, h)
	if err != nil {
		t.Fatalf("EncodeContainer: %v", err)
	}
	got, _, _, _, _, err := DecodeContainer(out)
	if err != nil {
		t.Fatalf("DecodeContainer: %v", err)
	}
	if len(got) != 1 || got[0].Src != 100000 || got[0].Dst != 0 || got[0].Length != 50000 {
		t.Errorf("got = %+v", got)
	}
}

func TestLargeAddRoundTrip(t *testing.T) {
	h := bytes.Repeat([]byte{0x06}, HashSize)
	var big []byte
	for i := 0; i < 4; i++ {
		for b := 0; b < 256; b++ {
			big = append(big, byte(b))
		}
	}
	placed := []PlacedCommand{placedAdd(0, big)}
	out, err := EncodeContainer(placed, false, uint32(len(big)), h, h)
	if err != nil {
		t.Fatalf("EncodeContainer: %v", err)
	}
	got, _, _, _, _, err := DecodeContainer(out)
	if err != nil {
		t.Fatalf("DecodeContainer: %v", err)
	}
	if len(got) != 1 || !bytes.Equal(got[0].Data, big) {
		t.Errorf("large add did not round-trip")
	}
}
