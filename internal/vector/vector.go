// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

// Package vector holds the numeric primitives shared by embedding and
// retrieval: cosine similarity over float32 vectors and the fixed-stride
// binary codec used to persist vectors in the store.
package vector

import (
	"encoding/binary"
	"math"

	passerr "github.com/passage-dev/passage/pkg/errors"
)

// Cosine returns the cosine similarity of a and b in [-1, 1].
//
// Vectors of different lengths compare as 0 rather than erroring, so a
// corpus embedded by mixed backends degrades instead of failing. A zero
// vector has no direction and likewise scores 0 against everything,
// including itself.
func Cosine(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	magA := float32(math.Sqrt(float64(normA)))
	magB := float32(math.Sqrt(float64(normB)))
	if magA == 0 || magB == 0 {
		return 0
	}

	return dot / (magA * magB)
}

// Encode serializes a vector into the fixed-stride little-endian layout used
// for the embedding BLOB column. It is the exact inverse of Decode; round
// trips are bit-identical. The layout matches sqlite-vec's float32 blob
// format, which the store writes.
func Encode(v []float32) []byte {
	blob := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(f))
	}
	return blob
}

// Decode reverses Encode. The blob length must be a whole multiple of four
// bytes; anything else indicates a corrupt row.
func Decode(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, passerr.Errorf(passerr.CodeStoreChunkDecodeFailed, "embedding blob length %d is not a multiple of 4", len(blob))
	}

	v := make([]float32, len(blob)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return v, nil
}
