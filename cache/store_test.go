package cache

import (
	"bytes"
	"context"
	"testing"

	"github.com/quietdns/hosttrie/test"
)

type memStore struct {
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(ctx context.Context, key string) ([]byte, error) {
	return m.data[key], nil
}

func (m *memStore) Put(ctx context.Context, key string, buf []byte) error {
	m.data[key] = append([]byte(nil), buf...)
	return nil
}

func TestCompressingStoreSmallBufferStoredVerbatim(t *testing.T) {
	mem := newMemStore()
	cs, err := NewCompressingStore(mem, 1024)
	test.AssertNotError(t, err, "constructing CompressingStore")

	small := []byte("short value")
	err = cs.Put(context.Background(), "k", small)
	test.AssertNotError(t, err, "Put")

	test.Assert(t, bytes.Equal(mem.data["k"], small), "small buffer should be stored uncompressed")

	got, err := cs.Get(context.Background(), "k")
	test.AssertNotError(t, err, "Get")
	test.AssertByteEquals(t, got, small)
}

func TestCompressingStoreLargeBufferCompressed(t *testing.T) {
	mem := newMemStore()
	cs, err := NewCompressingStore(mem, 8)
	test.AssertNotError(t, err, "constructing CompressingStore")

	large := bytes.Repeat([]byte("a"), 4096)
	err = cs.Put(context.Background(), "k", large)
	test.AssertNotError(t, err, "Put")

	test.Assert(t, !bytes.Equal(mem.data["k"], large), "large buffer should have been compressed on the wire")
	test.Assert(t, bytes.HasPrefix(mem.data["k"], zstdMagic), "compressed value should carry the zstd magic number")

	got, err := cs.Get(context.Background(), "k")
	test.AssertNotError(t, err, "Get")
	test.AssertByteEquals(t, got, large)
}
