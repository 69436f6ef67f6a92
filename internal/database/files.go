package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chmura-plikow/internal/models"

	"github.com/jackc/pgx/v5"
)

type CreateFileParams struct {
	ID            string
	UserID        int64
	OriginalName  string
	StoredName    string
	SizeBytes     int64
	MimeType      string
	Folder        string
	StorageDriver string
}

func (q *Queries) CreateFile(ctx context.Context, arg CreateFileParams) (*models.File, error) {
	query := `
		INSERT INTO files (id, user_id, original_name, stored_name, size_bytes, mime_type, folder, storage_driver, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, user_id, original_name, stored_name, size_bytes, mime_type, folder, storage_driver, created_at
	`
	row := q.db.QueryRow(ctx, query,
		arg.ID,
		arg.UserID,
		arg.OriginalName,
		arg.StoredName,
		arg.SizeBytes,
		arg.MimeType,
		arg.Folder,
		arg.StorageDriver,
		time.Now(),
	)

	var file models.File
	err := row.Scan(
		&file.ID,
		&file.UserID,
		&file.OriginalName,
		&file.StoredName,
		&file.SizeBytes,
		&file.MimeType,
		&file.Folder,
		&file.StorageDriver,
		&file.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &file, nil
}

func (q *Queries) GetFileByID(ctx context.Context, id string, userID int64) (*models.File, error) {
	query := `
		SELECT id, user_id, original_name, stored_name, size_bytes, mime_type, folder, storage_driver, created_at
		FROM files
		WHERE id = $1 AND user_id = $2
	`
	var file models.File

	err := q.db.QueryRow(ctx, query, id, userID).Scan(
		&file.ID,
		&file.UserID,
		&file.OriginalName,
		&file.StoredName,
		&file.SizeBytes,
		&file.MimeType,
		&file.Folder,
		&file.StorageDriver,
		&file.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &file, nil
}

func (q *Queries) FileExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM files WHERE id = $1)"
	err := q.db.QueryRow(ctx, query, id).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (q *Queries) DeleteFile(ctx context.Context, id string, userID int64) (bool, error) {
	query := `DELETE FROM files WHERE id = $1 AND user_id = $2`
	res, err := q.db.Exec(ctx, query, id, userID)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

// RenameFile nadpisuje wyświetlaną nazwę pliku. Zwraca nil, gdy plik nie
// istnieje lub nie należy do użytkownika.
func (q *Queries) RenameFile(ctx context.Context, id string, userID int64, newName string) (*models.File, error) {
	query := `
		UPDATE files
		SET original_name = $1
		WHERE id = $2 AND user_id = $3
		RETURNING id, user_id, original_name, stored_name, size_bytes, mime_type, folder, storage_driver, created_at
	`
	var file models.File

	err := q.db.QueryRow(ctx, query, newName, id, userID).Scan(
		&file.ID,
		&file.UserID,
		&file.OriginalName,
		&file.StoredName,
		&file.SizeBytes,
		&file.MimeType,
		&file.Folder,
		&file.StorageDriver,
		&file.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &file, nil
}

type ListFilesParams struct {
	Search string
	Folder string
	Page   int
	Limit  int
}

// escapeLike neutralizuje znaki specjalne ILIKE, żeby tekst wyszukiwania
// z '%', '_' lub '\' dopasowywał się dosłownie, a nie jako wzorzec.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// ListFiles filtruje pliki właściciela po folderze (dokładne dopasowanie)
// i opcjonalnej frazie (podciąg bez rozróżniania wielkości liter), stronicuje
// od najnowszych i zwraca też łączną liczbę dopasowań.
func (q *Queries) ListFiles(ctx context.Context, userID int64, arg ListFilesParams) ([]models.File, int64, error) {
	where := "WHERE user_id = $1"
	args := []interface{}{userID}

	if arg.Folder != "" {
		args = append(args, arg.Folder)
		where += fmt.Sprintf(" AND folder = $%d", len(args))
	}
	if arg.Search != "" {
		args = append(args, "%"+escapeLike(arg.Search)+"%")
		where += fmt.Sprintf(` AND original_name ILIKE $%d ESCAPE '\'`, len(args))
	}

	var total int64
	countQuery := "SELECT count(*) FROM files " + where
	if err := q.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (arg.Page - 1) * arg.Limit
	args = append(args, arg.Limit, offset)
	listQuery := fmt.Sprintf(`
		SELECT id, user_id, original_name, stored_name, size_bytes, mime_type, folder, storage_driver, created_at
		FROM files
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := q.db.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var files []models.File
	for rows.Next() {
		var file models.File
		err := rows.Scan(
			&file.ID,
			&file.UserID,
			&file.OriginalName,
			&file.StoredName,
			&file.SizeBytes,
			&file.MimeType,
			&file.Folder,
			&file.StorageDriver,
			&file.CreatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		files = append(files, file)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	if files == nil {
		return []models.File{}, total, nil
	}

	return files, total, nil
}
