package item

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"

	"github.com/veridex/veridex/pkg/errors"
)

// HashText returns the content-addressable identifier for a text: the MD5
// digest of its UTF-8 bytes encoded as unpadded URL-safe base64. Sentence
// and sentence-pair identifiers are derived this way, so equal texts always
// map to the same identifier.
func HashText(s string) string {
	sum := md5.Sum([]byte(s))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// HashItem returns the content-addressable identifier for an item: the
// SHA-256 digest of its canonical JSON encoding (object keys sorted at every
// level, which encoding/json guarantees for maps) encoded as unpadded
// URL-safe base64.
func HashItem(m M) (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeIndexInvalid, "item is not JSON encodable", err)
	}
	sum := sha256.Sum256(b)
	return base64.RawURLEncoding.EncodeToString(sum[:]), nil
}
