package registry

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Binary layout of a persisted embedding:
//
//	byte 0      codec version
//	byte 1      element width in bytes (4 = float32)
//	bytes 2-5   element count, little-endian uint32
//	bytes 6-    count * width payload, little-endian float32
//
// The explicit version and width make cross-backend or cross-version drift
// a decode error instead of a silently reinterpreted vector.
const (
	codecVersion = 1
	elementWidth = 4
	headerSize   = 6
)

// EncodeEmbedding serializes an embedding into the fixed-width binary layout.
func EncodeEmbedding(embedding []float32) []byte {
	buf := make([]byte, headerSize+len(embedding)*elementWidth)
	buf[0] = codecVersion
	buf[1] = elementWidth
	binary.LittleEndian.PutUint32(buf[2:6], uint32(len(embedding)))
	for i, v := range embedding {
		binary.LittleEndian.PutUint32(buf[headerSize+i*elementWidth:], math.Float32bits(v))
	}
	return buf
}

// DecodeEmbedding reconstructs an embedding, validating the header.
func DecodeEmbedding(data []byte) ([]float32, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("embedding record too short: %d bytes", len(data))
	}
	if data[0] != codecVersion {
		return nil, fmt.Errorf("unsupported embedding codec version %d", data[0])
	}
	if data[1] != elementWidth {
		return nil, fmt.Errorf("unsupported embedding element width %d", data[1])
	}

	count := binary.LittleEndian.Uint32(data[2:6])
	payload := data[headerSize:]
	if len(payload) != int(count)*elementWidth {
		return nil, fmt.Errorf("embedding payload length %d does not match count %d", len(payload), count)
	}

	embedding := make([]float32, count)
	for i := range embedding {
		bits := binary.LittleEndian.Uint32(payload[i*elementWidth:])
		embedding[i] = math.Float32frombits(bits)
	}
	return embedding, nil
}
