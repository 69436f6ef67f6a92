package database

import (
	"context"
	"errors"

	"chmura-plikow/internal/models"

	"github.com/jackc/pgx/v5"
)

var ErrQuotaExceeded = errors.New("storage quota exceeded")
var ErrUserNotFound = errors.New("user not found")

type StorageUsage struct {
	UsedStorageBytes  int64 `json:"used_storage_bytes"`
	StorageLimitBytes int64 `json:"storage_limit_bytes"`
}

// ReserveStorage dolicza bytes do zużycia użytkownika jednym warunkowym
// UPDATE. Rezerwacja i sprawdzenie limitu to jedna atomowa operacja, więc
// dwa równoległe uploady nie mogą razem przekroczyć limitu.
func (q *Queries) ReserveStorage(ctx context.Context, userID int64, bytes int64) error {
	query := `
		UPDATE users
		SET used_storage_bytes = used_storage_bytes + $1
		WHERE id = $2
		  AND used_storage_bytes + $1 <= GREATEST(storage_limit_bytes, $3)
	`
	res, err := q.db.Exec(ctx, query, bytes, userID, models.DefaultStorageLimitBytes)
	if err != nil {
		return err
	}
	if res.RowsAffected() > 0 {
		return nil
	}

	// Brak zmienionych wierszy: albo limit nie pozwala, albo nie ma użytkownika
	var exists bool
	err = q.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUserNotFound
	}
	return ErrQuotaExceeded
}

// ReleaseStorage odejmuje bytes od zużycia, przycinając wynik do zera.
// Zwraca poprzednią i nową wartość licznika; wywołujący loguje ostrzeżenie,
// gdy odjęcie wymagało przycięcia (rozjazd danych, nie błąd krytyczny).
func (q *Queries) ReleaseStorage(ctx context.Context, userID int64, bytes int64) (previous int64, current int64, err error) {
	query := `
		WITH before AS (
			SELECT used_storage_bytes FROM users WHERE id = $2
		)
		UPDATE users
		SET used_storage_bytes = GREATEST(used_storage_bytes - $1, 0)
		WHERE id = $2
		RETURNING (SELECT used_storage_bytes FROM before), used_storage_bytes
	`
	err = q.db.QueryRow(ctx, query, bytes, userID).Scan(&previous, &current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, ErrUserNotFound
		}
		return 0, 0, err
	}

	return previous, current, nil
}

// GetStorageUsage zwraca bieżące zużycie oraz efektywny limit
// (GREATEST z limitu zapisanego i systemowego domyślnego).
func (q *Queries) GetStorageUsage(ctx context.Context, userID int64) (*StorageUsage, error) {
	query := `
		SELECT used_storage_bytes, GREATEST(storage_limit_bytes, $2)
		FROM users
		WHERE id = $1
	`
	var usage StorageUsage
	err := q.db.QueryRow(ctx, query, userID, models.DefaultStorageLimitBytes).Scan(
		&usage.UsedStorageBytes,
		&usage.StorageLimitBytes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &usage, nil
}
