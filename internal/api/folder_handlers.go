package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"chmura-plikow/internal/database"
	"chmura-plikow/internal/models"

	"github.com/go-chi/chi/v5"
)

type ListFoldersResponse struct {
	Items []models.Folder `json:"items"`
}

// @Summary      List folders
// @Description  Lists the user's folders, newest first.
// @Tags         folders
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ListFoldersResponse
// @Failure      401  {object}  messageResponse
// @Failure      500  {object}  messageResponse
// @Router       /folders/list [get]
func (s *Server) ListFoldersHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	folders, err := s.store.ListFolders(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: Nie można pobrać listy folderów: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list folders")
		return
	}

	writeJSON(w, http.StatusOK, ListFoldersResponse{Items: folders})
}

type CreateFolderRequest struct {
	Name   string `json:"name" example:"Dokumenty"`
	Parent string `json:"parent" example:"root"`
}

// @Summary      Create a folder
// @Description  Creates a folder under the given parent (root by default). Sibling names must be unique.
// @Tags         folders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        createRequest  body      CreateFolderRequest  true  "Folder name and parent"
// @Success      201            {object}  models.Folder
// @Failure      400            {object}  messageResponse
// @Failure      401            {object}  messageResponse
// @Failure      409            {object}  messageResponse "Folder name already exists"
// @Failure      500            {object}  messageResponse
// @Router       /folders/create [post]
func (s *Server) CreateFolderHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	var req CreateFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "Folder name required")
		return
	}

	parent := strings.TrimSpace(req.Parent)
	if parent == "" {
		parent = models.RootFolder
	}

	folderID, err := s.generateUniqueID(r.Context(), s.store.FolderExists)
	if err != nil {
		log.Printf("ERROR: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	folder, err := s.store.CreateFolder(r.Context(), database.CreateFolderParams{
		ID:     folderID,
		UserID: claims.UserID,
		Name:   name,
		Parent: parent,
	})
	if err != nil {
		if errors.Is(err, database.ErrDuplicateFolderName) {
			writeError(w, http.StatusConflict, "Folder name already exists")
			return
		}
		log.Printf("ERROR: Nie można utworzyć folderu: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create folder")
		return
	}

	s.publishEvent(claims.UserID, "folder.created", folder)
	writeJSON(w, http.StatusCreated, folder)
}

type RenameFolderRequest struct {
	Name string `json:"name" example:"Faktury"`
}

// @Summary      Rename a folder
// @Description  Renames the folder and rewrites the folder reference on every file of the owner that pointed at the previous name, as one unit of work.
// @Tags         folders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        folderId       path  string               true  "Folder ID"
// @Param        renameRequest  body  RenameFolderRequest  true  "New folder name"
// @Success      200  {object}  models.Folder
// @Failure      400  {object}  messageResponse
// @Failure      401  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Failure      409  {object}  messageResponse "Folder name already exists"
// @Router       /folders/{folderId} [patch]
func (s *Server) RenameFolderHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	folderID := chi.URLParam(r, "folderId")

	var req RenameFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	newName := strings.TrimSpace(req.Name)
	if newName == "" {
		writeError(w, http.StatusBadRequest, "Folder name required")
		return
	}

	folder, err := s.store.RenameFolder(r.Context(), folderID, claims.UserID, newName)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateFolderName) {
			writeError(w, http.StatusConflict, "Folder name already exists")
			return
		}
		log.Printf("ERROR: Nie można zmienić nazwy folderu: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to rename folder")
		return
	}
	if folder == nil {
		writeError(w, http.StatusNotFound, "Folder not found")
		return
	}

	s.publishEvent(claims.UserID, "folder.renamed", folder)
	writeJSON(w, http.StatusOK, folder)
}

// @Summary      Delete a folder
// @Description  Deletes the folder when no file of the owner references it by name. Child folders are not inspected.
// @Tags         folders
// @Produce      json
// @Security     BearerAuth
// @Param        folderId  path  string  true  "Folder ID"
// @Success      200  {object}  successResponse
// @Failure      400  {object}  messageResponse "Folder not empty"
// @Failure      401  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Failure      500  {object}  messageResponse
// @Router       /folders/{folderId} [delete]
func (s *Server) DeleteFolderHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	folderID := chi.URLParam(r, "folderId")

	deleted, err := s.store.DeleteFolder(r.Context(), folderID, claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrFolderNotEmpty) {
			writeError(w, http.StatusBadRequest, "Folder not empty")
			return
		}
		log.Printf("ERROR: Nie można usunąć folderu: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete folder")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Folder not found")
		return
	}

	s.publishEvent(claims.UserID, "folder.deleted", map[string]string{"id": folderID})
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
