package storage

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("object not found in storage")
var ErrNotImplemented = errors.New("operation not implemented for this storage driver")

// Storage abstrahuje backend przechowujący bajty plików. Referencją jest
// wygenerowana przy uploadzie unikalna nazwa (stored name), niezależna od
// nazwy wyświetlanej.
type Storage interface {
	Save(ctx context.Context, ref string, data io.Reader) error
	Get(ctx context.Context, ref string) (io.ReadCloser, error)
	// Delete jest best-effort: brak obiektu nie jest błędem.
	Delete(ctx context.Context, ref string) error
	Driver() string
}
