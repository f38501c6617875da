// Package identity implements the identifier-set capability scheme that
// authorizes household edits without a full login. A "get household" response
// discloses a set of directory record ids along with a signature over that
// set; a later update may only reference ids inside a set whose signature
// verifies.
package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"sort"
	"strings"
)

// Set is a flat, de-duplicated collection of opaque directory record ids
type Set struct {
	ids []string
}

// NewSet builds a Set from raw ids, trimming whitespace and dropping
// duplicates and empties. Order is not significant.
func NewSet(ids ...string) Set {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		trimmed := strings.TrimSpace(id)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}
	return Set{ids: result}
}

// Add returns a Set extended with the given ids
func (s Set) Add(ids ...string) Set {
	return NewSet(append(s.IDs(), ids...)...)
}

// Contains reports whether the id is in the set
func (s Set) Contains(id string) bool {
	for _, v := range s.ids {
		if v == id {
			return true
		}
	}
	return false
}

// ContainsAll reports whether every given id is in the set
func (s Set) ContainsAll(ids []string) bool {
	for _, id := range ids {
		if !s.Contains(id) {
			return false
		}
	}
	return true
}

// IDs returns the ids in insertion order
func (s Set) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Len returns the number of ids in the set
func (s Set) Len() int {
	return len(s.ids)
}

// Signer computes and verifies signatures over identifier sets
type Signer struct {
	key []byte
}

// NewSigner creates a signer with the given secret key
func NewSigner(key string) *Signer {
	return &Signer{key: []byte(key)}
}

// Sign returns a base64 signature over the set. The same logical set always
// yields the same signature regardless of the order ids were collected in.
func (s *Signer) Sign(set Set) string {
	ids := set.IDs()
	sort.Strings(ids)

	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(strings.Join(ids, ",")))

	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature for the set and compares it in constant
// time against the presented one.
func (s *Signer) Verify(set Set, signature string) bool {
	presented, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}

	ids := set.IDs()
	sort.Strings(ids)

	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(strings.Join(ids, ",")))

	return hmac.Equal(mac.Sum(nil), presented)
}
