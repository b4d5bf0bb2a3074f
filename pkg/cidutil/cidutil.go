package cidutil

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multicodec"
	"github.com/multiformats/go-multihash"
)

// Info describes a content identifier for display purposes.
type Info struct {
	CID        string `json:"cid"`
	Valid      bool   `json:"valid"`
	Version    uint64 `json:"version"`
	Codec      string `json:"codec,omitempty"`
	Multihash  string `json:"multihash,omitempty"`
	DigestSize int    `json:"digest_size,omitempty"`
	Encoding   string `json:"encoding,omitempty"`
}

// Describe parses a CID string and returns display metadata for it. Parse
// failures are reported through the Valid field rather than an error: pin
// listings must still render rows for keys this build cannot parse, and
// object retrieval is allowed to try any non-empty key against the gateway.
func Describe(id string) Info {
	info := Info{CID: id}

	c, err := cid.Decode(id)
	if err != nil {
		return info
	}

	info.Valid = true
	prefix := c.Prefix()
	info.Version = prefix.Version
	info.Codec = multicodec.Code(prefix.Codec).String()

	if dec, err := multihash.Decode(c.Hash()); err == nil {
		info.Multihash = dec.Name
		info.DigestSize = dec.Length
	}

	if enc, err := cid.ExtractEncoding(id); err == nil {
		info.Encoding = multibase.EncodingToStr[enc]
	}

	return info
}

// Sum returns the CIDv1 string for data using the "raw" multicodec and a
// sha2-256 multihash. Matches what an IPFS node produces for a raw leaf add.
func Sum(data []byte) (string, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return "", err
	}
	return cid.NewCidV1(cid.Raw, sum).String(), nil
}
