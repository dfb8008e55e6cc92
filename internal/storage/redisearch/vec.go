package redisearch

import (
	"bytes"
	"encoding/binary"
)

// serializeVector converts a float32 slice to the LittleEndian BLOB layout
// RediSearch expects for FLOAT32 vector fields.
func serializeVector(vec []float32) []byte {
	buf := new(bytes.Buffer)
	// binary.Write on a bytes.Buffer with a fixed-size type cannot fail.
	_ = binary.Write(buf, binary.LittleEndian, vec)
	return buf.Bytes()
}
