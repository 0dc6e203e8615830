package api

import (
	"github.com/gorilla/mux"
)

func SetupRoutes(handler *MigrationHandler) *mux.Router {
	r := mux.NewRouter()

	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)

	r.HandleFunc("/health", handler.Health).Methods("GET")
	r.HandleFunc("/api/v1/migrations", handler.StartMigration).Methods("POST")
	r.HandleFunc("/api/v1/migrations", handler.ListMigrations).Methods("GET")
	r.HandleFunc("/api/v1/migrations/{runID}", handler.GetMigration).Methods("GET")

	return r
}
