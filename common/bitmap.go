package common

import (
	"bytes"
	"math/big"

	"github.com/RoaringBitmap/roaring"
	"github.com/pkg/errors"
)

const (
	serializeDefault = byte(0x1)
	serializeBigInt  = byte(0x2)
)

// Bitmap is a set of ticket ids in [0, size). It serializes either as a roaring bitmap or as a
// plain bit string, whichever is shorter.
type Bitmap struct {
	rmap *roaring.Bitmap
	size uint32
}

func NewBitmap(size uint32) *Bitmap {
	return &Bitmap{size: size, rmap: roaring.NewBitmap()}
}

func (m *Bitmap) Add(value uint32) {
	if value >= m.size {
		panic("value is out of range")
	}
	m.rmap.Add(value)
}

func (m *Bitmap) Contains(value uint32) bool {
	return m.rmap.Contains(value)
}

func (m *Bitmap) Cardinality() uint64 {
	return m.rmap.GetCardinality()
}

func (m *Bitmap) ToArray() []uint32 {
	return m.rmap.ToArray()
}

func (m *Bitmap) WriteTo(buffer *bytes.Buffer) {
	if m.rmap.HasRunCompression() {
		m.rmap.RunOptimize()
	}
	if m.rmap.GetSerializedSizeInBytes() > uint64(m.size/8+1) {
		bits := big.NewInt(0)
		buffer.WriteByte(serializeBigInt)
		for _, v := range m.rmap.ToArray() {
			t := big.NewInt(1)
			bits.Or(bits, t.Lsh(t, uint(v)))
		}
		buffer.Write(bits.Bytes())
	} else {
		buffer.WriteByte(serializeDefault)
		m.rmap.WriteTo(buffer)
	}
}

func (m *Bitmap) Bytes() []byte {
	buf := new(bytes.Buffer)
	m.WriteTo(buf)
	return buf.Bytes()
}

func (m *Bitmap) Read(data []byte) error {
	m.rmap = roaring.NewBitmap()
	if len(data) == 0 {
		return errors.New("empty bitmap data")
	}
	if data[0] == serializeDefault {
		if _, err := m.rmap.ReadFrom(bytes.NewBuffer(data[1:])); err != nil {
			return errors.Wrap(err, "failed to read roaring bitmap")
		}
		return nil
	}
	bits := new(big.Int).SetBytes(data[1:])
	for i := uint32(0); i < m.size; i++ {
		if bits.Bit(int(i)) == 1 {
			m.rmap.Add(i)
		}
	}
	return nil
}
