// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Passage Contributors

package embedding_test

import (
	"context"
	"testing"

	"github.com/passage-dev/passage/internal/embedding"
	passerr "github.com/passage-dev/passage/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder counts calls and returns a deterministic vector per text, or
// fails on the call number given by failOn (1-based).
type fakeEmbedder struct {
	calls      int
	batchSizes []int
	failOn     int
}

func (f *fakeEmbedder) Name() string { return "fake" }

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	f.batchSizes = append(f.batchSizes, len(texts))

	if f.failOn > 0 && f.calls == f.failOn {
		return nil, passerr.New(passerr.CodeProviderUpstreamFailure, "backend exploded")
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = []float32{float32(len(text)), 1, 0}
	}
	return out, nil
}

func texts(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = string(rune('a' + i%26))
	}
	return out
}

func TestEmbedEmptyInputSkipsBackend(t *testing.T) {
	fake := &fakeEmbedder{}
	svc := embedding.NewService(fake)

	vectors, err := svc.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
	assert.Zero(t, fake.calls)
}

func TestEmbedSmallInputSingleCall(t *testing.T) {
	fake := &fakeEmbedder{}
	svc := embedding.NewService(fake)

	vectors, err := svc.Embed(context.Background(), texts(5))
	require.NoError(t, err)
	assert.Len(t, vectors, 5)
	assert.Equal(t, 1, fake.calls)
}

func TestEmbedLargeInputBatches(t *testing.T) {
	fake := &fakeEmbedder{}
	svc := embedding.NewService(fake, embedding.WithBatchSize(10))

	vectors, err := svc.Embed(context.Background(), texts(25))
	require.NoError(t, err)
	assert.Len(t, vectors, 25)
	assert.Equal(t, []int{10, 10, 5}, fake.batchSizes)
}

func TestEmbedPreservesInputOrderAcrossBatches(t *testing.T) {
	fake := &fakeEmbedder{}
	svc := embedding.NewService(fake, embedding.WithBatchSize(2))

	in := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	vectors, err := svc.Embed(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, vectors, len(in))
	for i, text := range in {
		assert.Equal(t, float32(len(text)), vectors[i][0], "vector %d must match input %q", i, text)
	}
}

func TestEmbedBatchFailureAbortsWholeOperation(t *testing.T) {
	fake := &fakeEmbedder{failOn: 2}
	svc := embedding.NewService(fake, embedding.WithBatchSize(10))

	vectors, err := svc.Embed(context.Background(), texts(25))
	require.Error(t, err)
	assert.Nil(t, vectors, "no partial results on failure")
	assert.True(t, passerr.IsUpstreamFailure(err))
	assert.Equal(t, 2, fake.calls, "remaining batches must not be issued")
}

func TestEmbedOneReturnsSoleVector(t *testing.T) {
	fake := &fakeEmbedder{}
	svc := embedding.NewService(fake)

	vec, err := svc.EmbedOne(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{5, 1, 0}, vec)
}

type nilEmbedder struct{}

func (nilEmbedder) Name() string { return "nil" }
func (nilEmbedder) Embed(_ context.Context, _ []string) ([][]float32, error) {
	return nil, nil
}

// shortEmbedder drops the last vector of every batch.
type shortEmbedder struct{}

func (shortEmbedder) Name() string { return "short" }
func (shortEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for range texts[:len(texts)-1] {
		out = append(out, []float32{1, 0})
	}
	return out, nil
}

func TestEmbedCountMismatchIsRejected(t *testing.T) {
	svc := embedding.NewService(shortEmbedder{})

	_, err := svc.Embed(context.Background(), []string{"x", "y"})
	require.Error(t, err)
	assert.True(t, passerr.HasCode(err, passerr.CodeProviderEmbedCountMismatch))
}

func TestEmbedEmptyResultIsRejected(t *testing.T) {
	svc := embedding.NewService(nilEmbedder{})

	_, err := svc.Embed(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.True(t, passerr.HasCode(err, passerr.CodeProviderEmbedEmptyResult))
}

func TestEmbedOneNoResultCode(t *testing.T) {
	svc := embedding.NewService(nilEmbedder{})

	_, err := svc.EmbedOne(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, passerr.HasCode(err, passerr.CodeProviderEmbedEmptyResult))
}
