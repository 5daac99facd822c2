// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

package vector_test

import (
	"math"
	"testing"

	"github.com/passage-dev/passage/internal/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineIdenticalVectors(t *testing.T) {
	a := []float32{1, 2, 3}
	assert.InDelta(t, 1.0, vector.Cosine(a, a), 1e-6)
}

func TestCosineOrthogonalVectors(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{0, 1, 0}
	assert.InDelta(t, 0.0, vector.Cosine(a, b), 1e-6)
}

func TestCosineOppositeVectors(t *testing.T) {
	a := []float32{1, 2}
	b := []float32{-1, -2}
	assert.InDelta(t, -1.0, vector.Cosine(a, b), 1e-6)
}

func TestCosineParallelVectorsNormalize(t *testing.T) {
	a := []float32{2, 0, 0}
	b := []float32{3, 0, 0}
	assert.InDelta(t, 1.0, vector.Cosine(a, b), 1e-6)
}

func TestCosineGeneralCase(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{4, 5, 6}
	// 32 / (sqrt(14) * sqrt(77)) ≈ 0.9746
	assert.InDelta(t, 0.9746, vector.Cosine(a, b), 0.01)
}

func TestCosineLengthMismatchIsZero(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{1, 2}
	assert.Equal(t, float32(0), vector.Cosine(a, b))
}

func TestCosineZeroVectorIsZero(t *testing.T) {
	zero := []float32{0, 0, 0}
	other := []float32{1, 2, 3}
	assert.Equal(t, float32(0), vector.Cosine(zero, other))
	assert.Equal(t, float32(0), vector.Cosine(zero, zero))
}

func TestCosineIsSymmetric(t *testing.T) {
	a := []float32{0.3, -1.2, 4.5, 0.01}
	b := []float32{-2.2, 0.9, 1.1, 3.3}
	assert.Equal(t, vector.Cosine(a, b), vector.Cosine(b, a))
}

func TestEncodeDecodeRoundTripIsBitIdentical(t *testing.T) {
	in := []float32{
		0, 1, -1,
		float32(math.Pi),
		math.SmallestNonzeroFloat32,
		math.MaxFloat32,
		-0.000123,
	}

	blob := vector.Encode(in)
	require.Len(t, blob, len(in)*4)

	out, err := vector.Decode(blob)
	require.NoError(t, err)
	require.Len(t, out, len(in))

	for i := range in {
		assert.Equal(t, math.Float32bits(in[i]), math.Float32bits(out[i]), "component %d", i)
	}
}

func TestEncodeLayoutIsLittleEndian(t *testing.T) {
	// 1.0 = 0x3F800000, -2.0 = 0xC0000000; each written little-endian.
	blob := vector.Encode([]float32{1.0, -2.0})
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3F, 0x00, 0x00, 0x00, 0xC0}, blob)
}

func TestDecodeRejectsRaggedBlob(t *testing.T) {
	_, err := vector.Decode([]byte{0x01, 0x02, 0x03})
	require.Error(t, err)
}

func TestDecodeEmptyBlob(t *testing.T) {
	out, err := vector.Decode(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
