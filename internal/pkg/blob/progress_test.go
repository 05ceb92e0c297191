package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkReader 每次最多读 n 字节，便于产生多条进度
type chunkReader struct {
	r io.Reader
	n int
}

func (c chunkReader) Read(b []byte) (int, error) {
	if len(b) > c.n {
		b = b[:c.n]
	}
	return c.r.Read(b)
}

type failingStore struct{ MemoryStore }

func (*failingStore) Put(context.Context, string, string, io.Reader, int64) (string, error) {
	return "", errors.New("bucket not found")
}

func TestUploadWithProgress(t *testing.T) {
	store := NewMemoryStore("https://cdn.example.com/")
	payload := bytes.Repeat([]byte("x"), 4096)

	var seen []Event
	url, err := Wait(UploadWithProgress(context.Background(), store, "photos/a.jpg", "image/jpeg",
		chunkReader{r: bytes.NewReader(payload), n: 1024}, int64(len(payload))), func(ev Event) {
		seen = append(seen, ev)
	})

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/photos/a.jpg", url)
	require.NotEmpty(t, seen)
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, seen[i].Written, seen[i-1].Written)
	}
	assert.LessOrEqual(t, seen[len(seen)-1].Percent(), 100)

	ct, data, ok := store.Object("photos/a.jpg")
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", ct)
	assert.Equal(t, payload, data)
}

func TestUploadWithProgress_Error(t *testing.T) {
	url, err := Wait(UploadWithProgress(context.Background(), &failingStore{}, "a", "image/png",
		bytes.NewReader([]byte("x")), 1), nil)
	assert.Empty(t, url)
	assert.EqualError(t, err, "bucket not found")
}

func TestMemoryStore_ShortWrite(t *testing.T) {
	store := NewMemoryStore("http://local")
	_, err := store.Put(context.Background(), "a", "image/png", bytes.NewReader([]byte("abc")), 10)
	assert.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestEvent_Percent(t *testing.T) {
	assert.Equal(t, 50, Event{Written: 5, Total: 10}.Percent())
	assert.Equal(t, -1, Event{Written: 5}.Percent())
}
