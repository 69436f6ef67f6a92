package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"chmura-plikow/internal/database"
	"chmura-plikow/internal/models"
	"chmura-plikow/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
)

const (
	defaultListLimit = 50
	maxUploadBytes   = 1 << 30
)

func (s *Server) generateUniqueID(ctx context.Context, exists func(context.Context, string) (bool, error)) (string, error) {
	maxRetries := 10

	generateID, err := nanoid.Standard(21)
	if err != nil {
		return "", fmt.Errorf("failed to initialize nanoid generator: %w", err)
	}

	for i := 0; i < maxRetries; i++ {
		id := generateID()
		taken, err := exists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("failed to check for id existence: %w", err)
		}
		if !taken {
			return id, nil
		}
	}

	return "", fmt.Errorf("failed to generate a unique ID after %d attempts", maxRetries)
}

type ListFilesResponse struct {
	Items []models.File         `json:"items"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
	Usage database.StorageUsage `json:"usage"`
}

// @Summary      List files
// @Description  Lists the user's files, newest first, filtered by folder and case-insensitive name substring. Search text matches literally, also for characters like '.' or '*'. Every response carries a storage usage snapshot.
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Substring of the display name"
// @Param        folder  query     string  false  "Exact folder name"
// @Param        page    query     int     false  "Page, counted from 1"
// @Param        limit   query     int     false  "Page size (default 50)"
// @Success      200     {object}  ListFilesResponse
// @Failure      401     {object}  messageResponse
// @Failure      500     {object}  messageResponse
// @Router       /files/list [get]
func (s *Server) ListFilesHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = defaultListLimit
	}

	params := database.ListFilesParams{
		Search: r.URL.Query().Get("search"),
		Folder: r.URL.Query().Get("folder"),
		Page:   page,
		Limit:  limit,
	}

	files, total, err := s.store.ListFiles(r.Context(), claims.UserID, params)
	if err != nil {
		log.Printf("ERROR: Nie można pobrać listy plików: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list files")
		return
	}

	usage, err := s.store.GetStorageUsage(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: Nie można pobrać zużycia miejsca: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to read storage usage")
		return
	}
	if usage == nil {
		usage = &database.StorageUsage{StorageLimitBytes: models.DefaultStorageLimitBytes}
	}

	writeJSON(w, http.StatusOK, ListFilesResponse{
		Items: files,
		Total: total,
		Page:  page,
		Limit: limit,
		Usage: *usage,
	})
}

// @Summary      Upload a file
// @Description  Accepts a multipart form with a single "file" field and an optional "folder" field (defaults to root). Rejected with 413 when the upload would exceed the storage quota; the received bytes are then removed from the backend.
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file    formData  file    true   "File content"
// @Param        folder  formData  string  false  "Target folder name"
// @Success      201     {object}  models.File
// @Failure      400     {object}  messageResponse "No file uploaded"
// @Failure      401     {object}  messageResponse
// @Failure      413     {object}  messageResponse "Storage quota exceeded"
// @Failure      500     {object}  messageResponse
// @Router       /files/upload [post]
func (s *Server) UploadFileHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Error parsing multipart form")
		return
	}

	file, handler, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	folder := strings.TrimSpace(r.FormValue("folder"))
	if folder == "" {
		folder = models.RootFolder
	}

	fileID, err := s.generateUniqueID(r.Context(), s.store.FileExists)
	if err != nil {
		log.Printf("ERROR: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Referencja bajtów jest niezależna od nazwy wyświetlanej i globalnie
	// unikalna z konstrukcji
	storedName := uuid.New().String() + filepath.Ext(handler.Filename)

	if err := s.storage.Save(r.Context(), storedName, file); err != nil {
		log.Printf("ERROR: Nie można zapisać pliku %s: %v", storedName, err)
		writeError(w, http.StatusInternalServerError, "Failed to save file")
		return
	}

	sizeBytes := handler.Size
	if err := s.store.ReserveStorage(r.Context(), claims.UserID, sizeBytes); err != nil {
		// Bajty już wylądowały w backendzie - sprzątamy, żeby nie osierocić ich
		// bez rekordu w bazie
		if delErr := s.storage.Delete(r.Context(), storedName); delErr != nil {
			log.Printf("ERROR: Nie można usunąć osieroconego pliku %s: %v", storedName, delErr)
		}

		switch {
		case errors.Is(err, database.ErrQuotaExceeded):
			writeError(w, http.StatusRequestEntityTooLarge, "Storage quota exceeded")
		case errors.Is(err, database.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "User not found")
		default:
			log.Printf("ERROR: Rezerwacja miejsca nie powiodła się: %v", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	mimeType := handler.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	created, err := s.store.CreateFile(r.Context(), database.CreateFileParams{
		ID:            fileID,
		UserID:        claims.UserID,
		OriginalName:  handler.Filename,
		StoredName:    storedName,
		SizeBytes:     sizeBytes,
		MimeType:      mimeType,
		Folder:        folder,
		StorageDriver: s.storage.Driver(),
	})
	if err != nil {
		log.Printf("ERROR: Nie można utworzyć rekordu pliku: %v", err)
		if _, _, relErr := s.store.ReleaseStorage(r.Context(), claims.UserID, sizeBytes); relErr != nil {
			log.Printf("ERROR: Nie można zwolnić rezerwacji miejsca: %v", relErr)
		}
		if delErr := s.storage.Delete(r.Context(), storedName); delErr != nil {
			log.Printf("ERROR: Nie można usunąć osieroconego pliku %s: %v", storedName, delErr)
		}
		writeError(w, http.StatusInternalServerError, "Failed to create file record")
		return
	}

	s.publishEvent(claims.UserID, "file.uploaded", created)
	writeJSON(w, http.StatusCreated, created)
}

// streamFile wysyła bajty pliku z ustawionym nagłówkiem dyspozycji. Błąd
// odczytu po wysłaniu nagłówków nie może już zmienić statusu odpowiedzi,
// więc jest tylko logowany.
func (s *Server) streamFile(w http.ResponseWriter, r *http.Request, file *models.File, disposition string) {
	if file.StorageDriver != models.StorageDriverLocal {
		writeError(w, http.StatusNotImplemented, "Download from this storage driver is not implemented")
		return
	}

	stream, err := s.storage.Get(r.Context(), file.StoredName)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "File not found on disk")
			return
		}
		if errors.Is(err, storage.ErrNotImplemented) {
			writeError(w, http.StatusNotImplemented, "Download from this storage driver is not implemented")
			return
		}
		log.Printf("ERROR: Nie można otworzyć pliku %s: %v", file.StoredName, err)
		writeError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}
	defer stream.Close()

	mimeType := file.MimeType
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(file.OriginalName))
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	if disposition == "attachment" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", url.PathEscape(file.OriginalName)))
	} else {
		w.Header().Set("Content-Disposition", "inline")
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(file.SizeBytes, 10))

	if _, err := io.Copy(w, stream); err != nil {
		log.Printf("ERROR: Błąd strumieniowania pliku %s: %v", file.ID, err)
	}
}

// @Summary      Download a file
// @Description  Streams the file bytes as an attachment under the original display name.
// @Tags         files
// @Produce      application/octet-stream
// @Security     BearerAuth
// @Param        fileId  path  string  true  "File ID"
// @Success      200     {file}    file
// @Failure      401     {object}  messageResponse
// @Failure      404     {object}  messageResponse
// @Failure      501     {object}  messageResponse
// @Router       /files/download/{fileId} [get]
func (s *Server) DownloadFileHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	fileID := chi.URLParam(r, "fileId")

	file, err := s.store.GetFileByID(r.Context(), fileID, claims.UserID)
	if err != nil {
		log.Printf("ERROR: Nie można pobrać metadanych pliku: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve file metadata")
		return
	}
	if file == nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	s.streamFile(w, r, file, "attachment")
}

// @Summary      Preview a file
// @Description  Streams the file bytes inline. The MIME type falls back to an extension-based guess when not stored.
// @Tags         files
// @Produce      application/octet-stream
// @Security     BearerAuth
// @Param        fileId  path  string  true  "File ID"
// @Success      200     {file}    file
// @Failure      401     {object}  messageResponse
// @Failure      404     {object}  messageResponse
// @Failure      501     {object}  messageResponse
// @Router       /files/preview/{fileId} [get]
func (s *Server) PreviewFileHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	fileID := chi.URLParam(r, "fileId")

	file, err := s.store.GetFileByID(r.Context(), fileID, claims.UserID)
	if err != nil {
		log.Printf("ERROR: Nie można pobrać metadanych pliku: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve file metadata")
		return
	}
	if file == nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	s.streamFile(w, r, file, "inline")
}

type successResponse struct {
	Success bool `json:"success"`
}

// @Summary      Delete a file
// @Description  Removes the file record and releases its bytes from the quota. Backend cleanup is best-effort and never blocks the metadata deletion.
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Param        fileId  path  string  true  "File ID"
// @Success      200     {object}  successResponse
// @Failure      401     {object}  messageResponse
// @Failure      404     {object}  messageResponse
// @Failure      500     {object}  messageResponse
// @Router       /files/{fileId} [delete]
func (s *Server) DeleteFileHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	fileID := chi.URLParam(r, "fileId")

	file, err := s.store.GetFileByID(r.Context(), fileID, claims.UserID)
	if err != nil {
		log.Printf("ERROR: Nie można pobrać metadanych pliku: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve file metadata")
		return
	}
	if file == nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	// Rekord i licznik zużycia są źródłem prawdy - nieudane sprzątanie
	// backendu nie może zablokować usunięcia metadanych
	if err := s.storage.Delete(r.Context(), file.StoredName); err != nil {
		log.Printf("ERROR: Nie można usunąć bajtów pliku %s: %v", file.StoredName, err)
	}

	deleted, err := s.store.DeleteFile(r.Context(), fileID, claims.UserID)
	if err != nil {
		log.Printf("ERROR: Nie można usunąć rekordu pliku: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete file")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	previous, _, err := s.store.ReleaseStorage(r.Context(), claims.UserID, file.SizeBytes)
	if err != nil {
		log.Printf("ERROR: Nie można zwolnić miejsca po pliku %s: %v", fileID, err)
	} else if previous < file.SizeBytes {
		log.Printf("WARN: Licznik zużycia użytkownika %d poniżej rozmiaru usuwanego pliku (%d < %d). Przycięto do zera.", claims.UserID, previous, file.SizeBytes)
	}

	s.publishEvent(claims.UserID, "file.deleted", map[string]string{"id": fileID})
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

type RenameFileRequest struct {
	Name string `json:"name" example:"raport.pdf"`
}

// @Summary      Rename a file
// @Description  Changes the display name. When the new name has no extension, the original one is kept.
// @Tags         files
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        fileId         path  string             true  "File ID"
// @Param        renameRequest  body  RenameFileRequest  true  "New display name"
// @Success      200  {object}  models.File
// @Failure      400  {object}  messageResponse
// @Failure      401  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /files/rename/{fileId} [patch]
func (s *Server) RenameFileHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	fileID := chi.URLParam(r, "fileId")

	var req RenameFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	newName := strings.TrimSpace(req.Name)
	if newName == "" {
		writeError(w, http.StatusBadRequest, "File name required")
		return
	}

	file, err := s.store.GetFileByID(r.Context(), fileID, claims.UserID)
	if err != nil {
		log.Printf("ERROR: Nie można pobrać metadanych pliku: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve file metadata")
		return
	}
	if file == nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	// Zachowaj rozszerzenie oryginału, jeśli nowa nazwa nie ma własnego
	if filepath.Ext(newName) == "" {
		newName += filepath.Ext(file.OriginalName)
	}

	renamed, err := s.store.RenameFile(r.Context(), fileID, claims.UserID, newName)
	if err != nil {
		log.Printf("ERROR: Nie można zmienić nazwy pliku: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to rename file")
		return
	}
	if renamed == nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	s.publishEvent(claims.UserID, "file.renamed", renamed)
	writeJSON(w, http.StatusOK, renamed)
}
