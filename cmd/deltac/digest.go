package main

import (
	"golang.org/x/xerrors"

	"github.com/ipfs/go-cid"
	cbornode "github.com/ipfs/go-ipld-cbor"
	"github.com/multiformats/go-multihash"
	sha256simd "github.com/minio/sha256-simd"
)

// deltaSummary is the CBOR-serializable shape whose CID `info --cbor`
// prints; the CBOR bytes themselves are not printed.
type deltaSummary struct {
	InPlace      bool   `json:"inPlace"`
	VersionSize  uint32 `json:"versionSize"`
	CopyCommands int    `json:"copyCommands"`
	AddCommands  int    `json:"addCommands"`
	AddBytes     int    `json:"addBytes"`
	PayloadBytes int    `json:"payloadBytes"`
}

// contentCID wraps a sha256-simd digest of the raw container bytes into a
// CIDv1 (raw codec, sha2-256 multihash), giving callers a content address
// for a delta file independent of its own CRC-64/XZ integrity fields.
func contentCID(data []byte) (cid.Cid, error) {
	sum := sha256simd.Sum256(data)
	mh, err := multihash.Encode(sum[:], multihash.SHA2_256)
	if err != nil {
		return cid.Undef, xerrors.Errorf("encoding multihash: %w", err)
	}
	return cid.NewCidV1(cid.Raw, mh), nil
}

// cborSummaryNode wraps a deltaSummary as a CBOR IPLD node, giving the
// info command's --cbor output a content-addressed identifier built the
// same way the rest of the content-addressing stack builds one.
func cborSummaryNode(s deltaSummary) (*cbornode.Node, error) {
	node, err := cbornode.WrapObject(s, multihash.SHA2_256, -1)
	if err != nil {
		return nil, xerrors.Errorf("wrapping cbor summary: %w", err)
	}
	return node, nil
}
