package storage

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveOpenDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	name, err := store.Save("payment-proofs/a.jpg", []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "payment-proofs/a.jpg", name)

	f, err := store.Open(name)
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "img", string(data))

	require.NoError(t, store.Delete(name))
	_, err = store.Open(name)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NoError(t, store.Delete(name))
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "../secret", "/etc/passwd", "a/../../b"} {
		_, err := store.Save(name, []byte("x"))
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}
