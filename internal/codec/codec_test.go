package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoder_LittleEndianLayout(t *testing.T) {
	enc := NewEncoder(0)
	enc.U32(1)
	enc.U64(0x0102030405060708)
	enc.Bool(true)
	enc.Bool(false)

	want := []byte{
		0x01, 0x00, 0x00, 0x00,
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01,
		0x01,
		0x00,
	}
	assert.Equal(t, want, enc.Bytes())
}

func TestEncoder_ByteStringIsLengthPrefixed(t *testing.T) {
	enc := NewEncoder(0)
	enc.ByteString([]byte{0xaa, 0xbb})

	want := []byte{0x02, 0, 0, 0, 0, 0, 0, 0, 0xaa, 0xbb}
	assert.Equal(t, want, enc.Bytes())
}

func TestEncoder_Options(t *testing.T) {
	v := uint64(7)
	i := int64(-1)

	enc := NewEncoder(0)
	enc.OptionU64(nil)
	enc.OptionU64(&v)
	enc.OptionI64(&i)

	want := []byte{
		0x00,
		0x01, 0x07, 0, 0, 0, 0, 0, 0, 0,
		0x01, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	}
	assert.Equal(t, want, enc.Bytes())
}

func TestDecoder_ReadsWhatEncoderWrites(t *testing.T) {
	v := uint64(42)
	i := int64(-9)

	enc := NewEncoder(64)
	enc.U8(3)
	enc.U32(70000)
	enc.U64(1 << 40)
	enc.I64(-5)
	enc.Bool(true)
	enc.ByteString([]byte("abc"))
	enc.ByteString(nil)
	enc.Variant(2)
	enc.OptionU64(&v)
	enc.OptionU64(nil)
	enc.OptionI64(&i)

	dec := NewDecoder(enc.Bytes())
	assert.Equal(t, uint8(3), dec.U8())
	assert.Equal(t, uint32(70000), dec.U32())
	assert.Equal(t, uint64(1<<40), dec.U64())
	assert.Equal(t, int64(-5), dec.I64())
	assert.True(t, dec.Bool())
	assert.Equal(t, []byte("abc"), dec.ByteString())
	assert.Nil(t, dec.ByteString())
	assert.Equal(t, uint32(2), dec.Variant(3))
	require.NotNil(t, dec.OptionU64())
	assert.Nil(t, dec.OptionU64())
	got := dec.OptionI64()
	require.NotNil(t, got)
	assert.Equal(t, int64(-9), *got)
	require.NoError(t, dec.Finish())
}

func TestDecoder_UnexpectedEOFIsSticky(t *testing.T) {
	dec := NewDecoder([]byte{0x01, 0x02})

	assert.Equal(t, uint32(0), dec.U32())
	require.ErrorIs(t, dec.Err(), ErrUnexpectedEOF)

	// Later reads return zero values and keep the first error.
	assert.Equal(t, uint8(0), dec.U8())
	require.ErrorIs(t, dec.Finish(), ErrUnexpectedEOF)
}

func TestDecoder_TrailingBytes(t *testing.T) {
	dec := NewDecoder([]byte{0x01, 0xff})
	assert.Equal(t, uint8(1), dec.U8())
	require.ErrorIs(t, dec.Finish(), ErrTrailingBytes)
}

func TestDecoder_RejectsInvalidBool(t *testing.T) {
	dec := NewDecoder([]byte{0x02})
	assert.False(t, dec.Bool())
	require.Error(t, dec.Err())
	assert.Contains(t, dec.Err().Error(), "invalid bool")
}

func TestDecoder_RejectsInvalidOptionTag(t *testing.T) {
	dec := NewDecoder([]byte{0x05, 0, 0, 0, 0, 0, 0, 0, 0})
	assert.Nil(t, dec.OptionU64())
	require.Error(t, dec.Err())
	assert.Contains(t, dec.Err().Error(), "invalid option tag")
}

func TestDecoder_RejectsOversizedLength(t *testing.T) {
	enc := NewEncoder(0)
	enc.SeqLen(1 << 30)

	dec := NewDecoder(enc.Bytes())
	assert.Equal(t, 0, dec.SeqLen(1))
	require.Error(t, dec.Err())
	assert.Contains(t, dec.Err().Error(), "exceeds remaining input")
}

func TestDecoder_SeqLenAccountsForElementSize(t *testing.T) {
	enc := NewEncoder(0)
	enc.SeqLen(4)
	data := append(enc.Bytes(), make([]byte, 40)...)

	// 4 elements of 10 bytes fit exactly.
	dec := NewDecoder(data)
	assert.Equal(t, 4, dec.SeqLen(10))
	require.NoError(t, dec.Err())

	// 4 elements of 11 bytes do not.
	dec = NewDecoder(data)
	assert.Equal(t, 0, dec.SeqLen(11))
	require.Error(t, dec.Err())
	assert.ErrorIs(t, dec.Err(), ErrUnexpectedEOF)
	assert.Contains(t, dec.Err().Error(), "11 bytes per element")
}

func TestDecoder_SeqLenHugeLengthDoesNotOverflow(t *testing.T) {
	enc := NewEncoder(0)
	enc.U64(^uint64(0))
	data := append(enc.Bytes(), make([]byte, 64)...)

	dec := NewDecoder(data)
	assert.Equal(t, 0, dec.SeqLen(84))
	assert.ErrorIs(t, dec.Err(), ErrUnexpectedEOF)
}

func TestDecoder_RejectsVariantOutOfRange(t *testing.T) {
	enc := NewEncoder(0)
	enc.Variant(9)

	dec := NewDecoder(enc.Bytes())
	dec.Variant(2)
	require.Error(t, dec.Err())
	assert.Contains(t, dec.Err().Error(), "out of range")
}
