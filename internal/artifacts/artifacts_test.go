// SPDX-License-Identifier: MIT
package artifacts

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thatcatcamp/smartsvg/internal/db"
	"github.com/thatcatcamp/smartsvg/internal/projects"
)

func TestLocalStore(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	key := NewKey("p-1")
	require.NoError(t, store.Put(ctx, key, []byte("<svg/>")))

	data, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(data))

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, store.Delete(ctx, key))
}

func TestLocalStoreRejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../etc/passwd", "/abs.svg", "p-1//x.svg", `p-1\x.svg`} {
		assert.Error(t, store.Put(context.Background(), key, []byte("x")), key)
	}
}

// memoryS3 is an in-memory stand-in for the S3 client
type memoryS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memoryS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[*in.Bucket+"/"+*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *memoryS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *memoryS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *in.Bucket+"/"+*in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	client := &memoryS3{objects: map[string][]byte{}}
	store := NewS3StoreWithClient(client, "smart-svgs")
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "p-1/a.svg", []byte("<svg/>")))
	assert.Contains(t, client.objects, "smart-svgs/p-1/a.svg")

	data, err := store.Get(ctx, "p-1/a.svg")
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(data))

	require.NoError(t, store.Delete(ctx, "p-1/a.svg"))
	_, err = store.Get(ctx, "p-1/a.svg")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "s3", store.Type())
}

func TestSweeperRemovesExpiredArtifacts(t *testing.T) {
	database, err := db.Open("sqlite", ":memory:")
	require.NoError(t, err)
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	oldKey, newKey := NewKey("p-1"), NewKey("p-1")
	require.NoError(t, store.Put(ctx, oldKey, []byte("old")))
	require.NoError(t, store.Put(ctx, newKey, []byte("new")))

	old, err := projects.RecordArtifact(database, "p-1", oldKey, "local", 3)
	require.NoError(t, err)
	require.NoError(t, database.Model(old).Update("created_at", time.Now().Add(-72*time.Hour)).Error)
	_, err = projects.RecordArtifact(database, "p-1", newKey, "local", 3)
	require.NoError(t, err)

	sweeper := NewSweeper(store, database, 24*time.Hour, zerolog.Nop())
	removed, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = store.Get(ctx, oldKey)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, newKey)
	assert.NoError(t, err)

	latest, err := projects.LatestArtifact(database, "p-1")
	require.NoError(t, err)
	assert.Equal(t, newKey, latest.StorageKey)
}

func TestSweeperKeepsForeverWithoutRetention(t *testing.T) {
	sweeper := NewSweeper(nil, nil, 0, zerolog.Nop())
	removed, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestSweeperStop(t *testing.T) {
	database, err := db.Open("sqlite", ":memory:")
	require.NoError(t, err)
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	sweeper := NewSweeper(store, database, time.Hour, zerolog.Nop())
	sweeper.Interval = 10 * time.Millisecond
	done := sweeper.Start()
	time.Sleep(50 * time.Millisecond)
	sweeper.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop within timeout")
	}
}
