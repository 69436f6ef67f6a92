package database

import (
	"context"
	"errors"
	"time"

	"chmura-plikow/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrDuplicateFolderName = errors.New("a folder with the same name already exists under this parent")
var ErrFolderNotEmpty = errors.New("folder is not empty")

type CreateFolderParams struct {
	ID     string
	UserID int64
	Name   string
	Parent string
}

func (q *Queries) CreateFolder(ctx context.Context, arg CreateFolderParams) (*models.Folder, error) {
	query := `
		INSERT INTO folders (id, user_id, name, parent, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, name, parent, created_at
	`
	row := q.db.QueryRow(ctx, query, arg.ID, arg.UserID, arg.Name, arg.Parent, time.Now())

	var folder models.Folder
	err := row.Scan(
		&folder.ID,
		&folder.UserID,
		&folder.Name,
		&folder.Parent,
		&folder.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateFolderName
		}
		return nil, err
	}

	return &folder, nil
}

func (q *Queries) ListFolders(ctx context.Context, userID int64) ([]models.Folder, error) {
	query := `
		SELECT id, user_id, name, parent, created_at
		FROM folders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := q.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		err := rows.Scan(
			&folder.ID,
			&folder.UserID,
			&folder.Name,
			&folder.Parent,
			&folder.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		folders = append(folders, folder)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if folders == nil {
		return []models.Folder{}, nil
	}

	return folders, nil
}

func (q *Queries) GetFolderByID(ctx context.Context, id string, userID int64) (*models.Folder, error) {
	query := `
		SELECT id, user_id, name, parent, created_at
		FROM folders
		WHERE id = $1 AND user_id = $2
	`
	var folder models.Folder

	err := q.db.QueryRow(ctx, query, id, userID).Scan(
		&folder.ID,
		&folder.UserID,
		&folder.Name,
		&folder.Parent,
		&folder.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &folder, nil
}

func (q *Queries) FolderExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM folders WHERE id = $1)"
	err := q.db.QueryRow(ctx, query, id).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (q *Queries) updateFolderName(ctx context.Context, id string, userID int64, newName string) error {
	query := `
		UPDATE folders
		SET name = $1
		WHERE id = $2 AND user_id = $3
	`
	_, err := q.db.Exec(ctx, query, newName, id, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateFolderName
		}
		return err
	}
	return nil
}

func (q *Queries) updateFilesFolder(ctx context.Context, userID int64, oldFolder, newFolder string) (int64, error) {
	query := `
		UPDATE files
		SET folder = $1
		WHERE user_id = $2 AND folder = $3
	`
	res, err := q.db.Exec(ctx, query, newFolder, userID, oldFolder)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

// RenameFolder zmienia nazwę folderu i w tej samej transakcji przepisuje pole
// folder we wszystkich plikach właściciela wskazujących starą nazwę. Pliki
// odwołują się do folderów po nazwie, więc propagacja jest obowiązkowa.
// Zwraca nil, gdy folder nie istnieje lub nie należy do użytkownika.
func (s *Store) RenameFolder(ctx context.Context, folderID string, userID int64, newName string) (*models.Folder, error) {
	var renamed *models.Folder

	txErr := s.ExecTx(ctx, func(q *Queries) error {
		folder, err := q.GetFolderByID(ctx, folderID, userID)
		if err != nil {
			return err
		}
		if folder == nil {
			return nil
		}

		if err := q.updateFolderName(ctx, folderID, userID, newName); err != nil {
			return err
		}

		if _, err := q.updateFilesFolder(ctx, userID, folder.Name, newName); err != nil {
			return err
		}

		folder.Name = newName
		renamed = folder
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return renamed, nil
}

// DeleteFolder usuwa folder tylko wtedy, gdy żaden plik właściciela nie
// wskazuje go po nazwie. Podfoldery nie są sprawdzane ani usuwane kaskadowo.
func (q *Queries) DeleteFolder(ctx context.Context, folderID string, userID int64) (bool, error) {
	folder, err := q.GetFolderByID(ctx, folderID, userID)
	if err != nil {
		return false, err
	}
	if folder == nil {
		return false, nil
	}

	var hasFiles bool
	query := `SELECT EXISTS(SELECT 1 FROM files WHERE user_id = $1 AND folder = $2)`
	if err := q.db.QueryRow(ctx, query, userID, folder.Name).Scan(&hasFiles); err != nil {
		return false, err
	}
	if hasFiles {
		return false, ErrFolderNotEmpty
	}

	res, err := q.db.Exec(ctx, `DELETE FROM folders WHERE id = $1 AND user_id = $2`, folderID, userID)
	if err != nil {
		return false, err
	}

	return res.RowsAffected() > 0, nil
}
