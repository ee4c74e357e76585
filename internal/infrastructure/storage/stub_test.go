package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStubObjectStorage(t *testing.T) {
	s := NewStubObjectStorage()
	require.NotNil(t, s)
	assert.Equal(t, "https://storage.example.com", s.BaseURL)
}

func TestStubObjectStorage_GenerateDownloadURL(t *testing.T) {
	s := NewStubObjectStorage()

	url, expiresAt, err := s.GenerateDownloadURL(context.Background(), "receipts/dep_abc123.pdf", 1*time.Hour)
	require.NoError(t, err)
	assert.Contains(t, url, "https://storage.example.com/download/receipts/dep_abc123.pdf")
	assert.True(t, expiresAt.After(time.Now()))
}

func TestStubObjectStorage_DeleteObjectIsNoOp(t *testing.T) {
	s := NewStubObjectStorage()
	require.NoError(t, s.DeleteObject(context.Background(), "receipts/dep_abc123.pdf"))
}

func TestStubObjectStorage_ObjectExists(t *testing.T) {
	s := NewStubObjectStorage()

	exists, err := s.ObjectExists(context.Background(), "receipts/dep_abc123.pdf")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestStubObjectStorage_EmptyKeyRejected(t *testing.T) {
	s := NewStubObjectStorage()
	ctx := context.Background()

	_, _, err := s.GenerateDownloadURL(ctx, "", 1*time.Hour)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage key is required")

	err = s.DeleteObject(ctx, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage key is required")

	exists, err := s.ObjectExists(ctx, "")
	require.Error(t, err)
	assert.False(t, exists)
	assert.Contains(t, err.Error(), "storage key is required")
}
