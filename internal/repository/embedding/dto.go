package embedding

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/DominicD213/shoprank/internal/domain"
)

// buildHashFields converts an Embedding into a flat map[string]string for HSET.
func buildHashFields(emb domain.Embedding) map[string]string {
	return map[string]string{
		"vector": vectorToBytes(emb.Vector()),
		"dims":   strconv.Itoa(emb.Dim()),
	}
}

// parseHashFields converts a hash map back into an Embedding.
// The second return is false when the hash is absent or the payload does not
// decode to a vector of the recorded dimension.
func parseHashFields(itemID string, m map[string]string) (domain.Embedding, bool) {
	raw, ok := m["vector"]
	if !ok {
		return domain.Embedding{}, false
	}
	vec := bytesToVector(raw)
	if vec == nil {
		return domain.Embedding{}, false
	}
	if dims, err := strconv.Atoi(m["dims"]); err == nil && dims != len(vec) {
		return domain.Embedding{}, false
	}
	return domain.NewEmbedding(itemID, vec), true
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b) == 0 || len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
