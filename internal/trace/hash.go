package trace

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest computes the content identity of an encoded summary.
// Format: SHA256(DigestDomain + 0x00 + encoded), hex encoded.
// The null separator keeps the domain and payload boundary unambiguous.
func Digest(encoded []byte) string {
	h := sha256.New()
	h.Write([]byte(DigestDomain))
	h.Write([]byte{0x00})
	h.Write(encoded)
	return hex.EncodeToString(h.Sum(nil))
}

// Digest encodes s and returns its content identity.
// Two summaries have the same digest exactly when they encode identically.
func (s *ProgramSummary) Digest() (string, error) {
	data, err := s.MarshalBinary()
	if err != nil {
		return "", err
	}
	return Digest(data), nil
}
