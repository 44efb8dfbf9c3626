package deltac

import (
	"encoding/binary"
	"io"

	"golang.org/x/xerrors"
)

// Magic is the 4-byte container signature (§6.1). This module fixes on
// the newest fixed-width layout the source material settled on; the
// earlier VCDIFF-style variant-length codeword format and the DLT\x01
// layout are both superseded, per spec.md's Open Questions.
var Magic = [4]byte{'D', 'L', 'T', 0x03}

const (
	flagInPlace = byte(1 << 0)

	recordEnd  = byte(0)
	recordCopy = byte(1)
	recordAdd  = byte(2)
)

// headerSize is 4 (magic) + 1 (flags) + 4 (version size) + 2*HashSize.
func headerSize() int { return 4 + 1 + 4 + 2*HashSize }

// EncodeContainer serializes a placed command stream into the binary
// delta format (§6.1): header, then typed command records in execution
// order, terminated by an explicit END byte.
func EncodeContainer(placed []PlacedCommand, inPlace bool, versionSize uint32, srcHash, dstHash []byte) ([]byte, error) {
	if len(srcHash) != HashSize || len(dstHash) != HashSize {
		return nil, xerrors.Errorf("%w: hash fields must be %d bytes", ErrBadParameter, HashSize)
	}

	buf := make([]byte, 0, headerSize()+16*len(placed)+1)
	buf = append(buf, Magic[:]...)

	var flags byte
	if inPlace {
		flags |= flagInPlace
	}
	buf = append(buf, flags)

	buf = appendUint32(buf, versionSize)
	buf = append(buf, srcHash...)
	buf = append(buf, dstHash...)

	for _, p := range placed {
		switch p.Kind {
		case KindCopy:
			buf = append(buf, recordCopy)
			buf = appendUint32(buf, uint32(p.Src))
			buf = appendUint32(buf, uint32(p.Dst))
			buf = appendUint32(buf, uint32(p.Length))
		case KindAdd:
			buf = append(buf, recordAdd)
			buf = appendUint32(buf, uint32(p.Dst))
			buf = appendUint32(buf, uint32(len(p.Data)))
			buf = append(buf, p.Data...)
		}
	}
	buf = append(buf, recordEnd)

	return buf, nil
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

// DecodeContainer parses a binary delta, returning its placed commands,
// the in-place flag, the recorded version size, and the two integrity
// hash fields verbatim. It rejects a stream that doesn't start with the
// magic or that ends mid-record (ErrBadFormat); hash verification is the
// caller's responsibility (§6.1).
func DecodeContainer(data []byte) (placed []PlacedCommand, inPlace bool, versionSize uint32, srcHash, dstHash []byte, err error) {
	if len(data) < headerSize() {
		return nil, false, 0, nil, nil, xerrors.Errorf("%w: truncated header", ErrBadFormat)
	}
	if [4]byte{data[0], data[1], data[2], data[3]} != Magic {
		return nil, false, 0, nil, nil, xerrors.Errorf("%w: bad magic", ErrBadFormat)
	}

	flags := data[4]
	inPlace = flags&flagInPlace != 0
	versionSize = binary.BigEndian.Uint32(data[5:9])

	off := 9
	srcHash = append([]byte(nil), data[off:off+HashSize]...)
	off += HashSize
	dstHash = append([]byte(nil), data[off:off+HashSize]...)
	off += HashSize

	for {
		if off >= len(data) {
			return nil, false, 0, nil, nil, xerrors.Errorf("%w: stream ended without END record", ErrBadFormat)
		}
		recType := data[off]
		off++

		switch recType {
		case recordEnd:
			return placed, inPlace, versionSize, srcHash, dstHash, nil

		case recordCopy:
			if off+12 > len(data) {
				return nil, false, 0, nil, nil, xerrors.Errorf("%w: truncated copy record", ErrBadFormat)
			}
			src := binary.BigEndian.Uint32(data[off : off+4])
			dst := binary.BigEndian.Uint32(data[off+4 : off+8])
			length := binary.BigEndian.Uint32(data[off+8 : off+12])
			off += 12
			placed = append(placed, placedCopy(int(src), int(dst), int(length)))

		case recordAdd:
			if off+8 > len(data) {
				return nil, false, 0, nil, nil, xerrors.Errorf("%w: truncated add record", ErrBadFormat)
			}
			dst := binary.BigEndian.Uint32(data[off : off+4])
			length := binary.BigEndian.Uint32(data[off+4 : off+8])
			off += 8
			if off+int(length) > len(data) {
				return nil, false, 0, nil, nil, xerrors.Errorf("%w: truncated add payload", ErrBadFormat)
			}
			d := append([]byte(nil), data[off:off+int(length)]...)
			off += int(length)
			placed = append(placed, placedAdd(int(dst), d))

		default:
			return nil, false, 0, nil, nil, xerrors.Errorf("%w: unknown record type %d", ErrBadFormat, recType)
		}
	}
}

// WriteContainer is a thin io.Writer convenience wrapper for callers
// that build the container bytes once and then stream them out.
func WriteContainer(w io.Writer, placed []PlacedCommand, inPlace bool, versionSize uint32, srcHash, dstHash []byte) error {
	buf, err := EncodeContainer(placed, inPlace, versionSize, srcHash, dstHash)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}
