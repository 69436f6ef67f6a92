// @title           Chmura Plików API
// @version         1.0
// @host            localhost
// @schemes         http https
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"log"
	"net/http"

	"chmura-plikow/internal/api"
	"chmura-plikow/internal/config"
	"chmura-plikow/internal/database"
	"chmura-plikow/internal/storage"
	"chmura-plikow/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "chmura-plikow/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

func newStorage(cfg *config.Config) (storage.Storage, error) {
	if cfg.Storage.Driver == "s3" {
		return storage.NewS3Storage(context.Background(), storage.S3Options{
			Region:    cfg.Storage.S3.Region,
			Bucket:    cfg.Storage.S3.Bucket,
			Endpoint:  cfg.Storage.S3.Endpoint,
			AccessKey: cfg.Storage.S3.AccessKey,
			SecretKey: cfg.Storage.S3.SecretKey,
		})
	}
	return storage.NewLocalStorage(cfg.Storage.Path)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Nie można wczytać konfiguracji: %v", err)
	}

	dbpool, err := pgxpool.New(context.Background(), cfg.DB.Source)
	if err != nil {
		log.Fatalf("Nie można połączyć się z bazą danych: %v", err)
	}
	defer dbpool.Close()

	if err := dbpool.Ping(context.Background()); err != nil {
		log.Fatalf("Nie można pingować bazy danych: %v", err)
	}
	log.Println("Pomyślnie połączono z bazą danych")

	fileStorage, err := newStorage(cfg)
	if err != nil {
		log.Fatalf("Nie można zainicjować backendu plików: %v", err)
	}
	log.Printf("Backend plików: %s", fileStorage.Driver())

	wsHub := websocket.NewHub()
	go wsHub.Run()

	store := database.NewStore(dbpool)
	server := api.NewServer(cfg, store, fileStorage, wsHub)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORS.Origin},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("https://localhost/swagger/doc.json"),
	))

	r.Get("/ws", server.ServeWsHandler)
	r.Get("/health", server.HealthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/v1/auth/signup", server.SignupHandler)
	r.Post("/api/v1/auth/login", server.LoginHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(server.AuthMiddleware)
		r.Get("/auth/me", server.MeHandler)

		r.Get("/files/list", server.ListFilesHandler)
		r.Post("/files/upload", server.UploadFileHandler)
		r.Get("/files/download/{fileId}", server.DownloadFileHandler)
		r.Get("/files/preview/{fileId}", server.PreviewFileHandler)
		r.Patch("/files/rename/{fileId}", server.RenameFileHandler)
		r.Delete("/files/{fileId}", server.DeleteFileHandler)

		r.Get("/folders/list", server.ListFoldersHandler)
		r.Post("/folders/create", server.CreateFolderHandler)
		r.Patch("/folders/{folderId}", server.RenameFolderHandler)
		r.Delete("/folders/{folderId}", server.DeleteFolderHandler)
	})

	log.Printf("Uruchamianie serwera na %s", cfg.HTTP.Addr)
	if err := http.ListenAndServe(cfg.HTTP.Addr, r); err != nil {
		log.Fatalf("Nie można uruchomić serwera: %v", err)
	}
}
