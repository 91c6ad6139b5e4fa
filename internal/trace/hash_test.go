package trace

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigest_DomainSeparated(t *testing.T) {
	payload := []byte{1, 2, 3}

	h := sha256.Sum256(append([]byte(DigestDomain+"\x00"), payload...))
	assert.Equal(t, hex.EncodeToString(h[:]), Digest(payload))

	plain := sha256.Sum256(payload)
	assert.NotEqual(t, hex.EncodeToString(plain[:]), Digest(payload))
}

func TestSummaryDigest_Stable(t *testing.T) {
	a, err := New(sampleSummary())
	require.NoError(t, err)

	d1, err := a.Digest()
	require.NoError(t, err)
	d2, err := a.Clone().Digest()
	require.NoError(t, err)

	assert.Len(t, d1, 64)
	assert.Equal(t, d1, d2)
}

func TestSummaryDigest_ChangesWithContent(t *testing.T) {
	a, err := New(sampleSummary())
	require.NoError(t, err)
	b := a.Clone()
	b.CircuitFlags[0] = !b.CircuitFlags[0]

	da, err := a.Digest()
	require.NoError(t, err)
	db, err := b.Digest()
	require.NoError(t, err)

	assert.NotEqual(t, da, db)
}

func TestSummaryDigest_EncodeFailure(t *testing.T) {
	s := &ProgramSummary{RawTrace: rowsOf(Opcode(300))}

	_, err := s.Digest()
	require.Error(t, err)
	assert.True(t, IsEncodeError(err))
}
