package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter wires the HTTP surface and wraps it with CORS for the
// document-store frontends.
func NewRouter(extraction *ExtractionHandler, upload *UploadHandler) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/extract", extraction.Enqueue).Methods("POST")
	router.HandleFunc("/health", extraction.Health).Methods("GET")
	router.HandleFunc("/status/{id}", extraction.Status).Methods("GET")

	router.HandleFunc("/test/extract/{id}", extraction.TestExtract).Methods("POST")
	router.HandleFunc("/test/files", extraction.ListFiles).Methods("GET")

	router.HandleFunc("/filesystem/upload", upload.Upload).Methods("POST")

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	return c.Handler(router)
}
