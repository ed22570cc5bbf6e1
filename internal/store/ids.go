package store

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
)

const nodeIDPrefix = "node"

// newRandomID returns prefix-<suffix> where suffix is 8 chars of base32 (lowercase, no padding).
// 8 chars base32 ~= 40 bits (~1 trillion) of space.
func newRandomID(prefix string) (string, error) {
	var b [5]byte // 40 bits -> 8 base32 chars
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	suffix := strings.ToLower(enc.EncodeToString(b[:]))
	return prefix + "-" + suffix, nil
}

// NewNodeID issues an id that has never been handed out by this session, live or deleted.
func (s *Session) NewNodeID() string {
	if s.issued == nil {
		s.issued = map[string]bool{}
	}
	for i := 0; i < 10; i++ {
		id, err := newRandomID(nodeIDPrefix)
		if err != nil {
			break
		}
		if !s.issued[id] {
			s.issued[id] = true
			return id
		}
	}
	// crypto/rand failed or kept colliding: fall back to a session counter.
	for {
		s.seq++
		id := fmt.Sprintf("%s-%d", nodeIDPrefix, s.seq)
		if !s.issued[id] {
			s.issued[id] = true
			return id
		}
	}
}

// claimID records an externally chosen id (seeding, tests) as issued.
func (s *Session) claimID(id string) {
	if s.issued == nil {
		s.issued = map[string]bool{}
	}
	s.issued[id] = true
}
