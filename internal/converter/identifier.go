package converter

import (
	"github.com/google/uuid"
	"github.com/zeebo/blake3"
)

// contentIdentifier derives a stable package identifier from the inputs: a
// name-based UUID over a BLAKE3 digest of the HTML and every asset.
// Identical inputs always yield the same identifier.
func contentIdentifier(html []byte, assets []Asset) string {
	h := blake3.New()
	h.Write(html)
	for _, a := range assets {
		h.Write([]byte{0})
		h.Write([]byte(a.URL))
		h.Write([]byte{0})
		h.Write([]byte(a.Filename))
		h.Write([]byte{0})
		h.Write(a.Data)
	}
	return "urn:uuid:" + uuid.NewSHA1(uuid.NameSpaceURL, h.Sum(nil)).String()
}
