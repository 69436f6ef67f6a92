package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLocalStorage(t *testing.T) {
	tempDir := t.TempDir()

	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)
	require.NotNil(t, storage)
	require.Equal(t, tempDir, storage.basePath)

	// Sprawdź, czy katalog został utworzony
	_, err = os.Stat(tempDir)
	require.NoError(t, err, "Base directory should be created")
}

func TestLocalStorage_SaveGetDelete(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	ctx := context.Background()
	ref := "7e6a7c3e-test.txt"
	content := "Hello, world!"
	contentReader := strings.NewReader(content)

	// --- Test Save ---
	err = storage.Save(ctx, ref, contentReader)
	require.NoError(t, err)

	// Sprawdź, czy plik fizycznie istnieje na dysku w oczekiwanej ścieżce
	expectedPath := storage.getPathFromRef(ref)
	fileInfo, err := os.Stat(expectedPath)
	require.NoError(t, err, "File should exist after save")
	require.Equal(t, int64(len(content)), fileInfo.Size())

	// --- Test Get ---
	readCloser, err := storage.Get(ctx, ref)
	require.NoError(t, err)

	retrievedContent, err := io.ReadAll(readCloser)
	require.NoError(t, err)
	readCloser.Close()
	require.Equal(t, content, string(retrievedContent))

	// --- Test Delete ---
	err = storage.Delete(ctx, ref)
	require.NoError(t, err)

	_, err = os.Stat(expectedPath)
	require.Error(t, err)
	require.True(t, os.IsNotExist(err), "File should not exist after delete")
}

func TestLocalStorage_GetNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	_, err = storage.Get(context.Background(), "non_existent_ref")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorage_DeleteNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	// Usunięcie nieistniejącego obiektu nie powinno zwracać błędu
	err = storage.Delete(context.Background(), "non_existent_ref")
	require.NoError(t, err)
}

func TestLocalStorage_RefCannotEscapeBase(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	// Referencja z separatorami ścieżki ląduje płasko w katalogu bazowym
	err = storage.Save(context.Background(), "../../evil.txt", strings.NewReader("x"))
	require.NoError(t, err)

	_, err = os.Stat(storage.basePath + "/evil.txt")
	require.NoError(t, err)
}

func TestLocalStorage_SaveWithLargeData(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	ref := "large_file_ref.bin"
	// Stwórz duży bufor w pamięci (1 MB)
	largeContent := make([]byte, 1024*1024)
	for i := range largeContent {
		largeContent[i] = 'a'
	}
	contentReader := bytes.NewReader(largeContent)

	err = storage.Save(context.Background(), ref, contentReader)
	require.NoError(t, err)

	expectedPath := storage.getPathFromRef(ref)
	fileInfo, err := os.Stat(expectedPath)
	require.NoError(t, err)
	require.Equal(t, int64(len(largeContent)), fileInfo.Size())
}
