package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"astrocalc/internal/catalog"
	"astrocalc/internal/config"
	"astrocalc/internal/db"
	"astrocalc/internal/migrations"
	"astrocalc/internal/seed"
)

func main() {
	cfg := config.Load()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database, "migrations"); err != nil {
			log.Fatalf("failed to run database migrations: %v", err)
		}
		stats, err := seed.Run(database)
		if err != nil {
			log.Fatalf("failed to seed formula catalog: %v", err)
		}
		if stats.Inserts > 0 {
			log.Printf("catalog seed: %d rows inserted", stats.Inserts)
		}
	}

	registry, cat, err := catalog.Load(database)
	if err != nil {
		log.Fatalf("failed to load formula catalog: %v", err)
	}

	srv := &server{
		registry: registry,
		catalog:  cat,
		sessions: newSessionManager(cfg.SessionSecret, cat),
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.routes()); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func (s *server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(s.sessions.ensure)
	r.Get("/api/groups", s.handleGroups)
	r.Route("/api/groups/{group}/formulas/{formula}", func(r chi.Router) {
		r.Get("/", s.handleFormula)
		r.Post("/variables/{variable}/input", s.handleVariableInput)
		r.Post("/variables/{variable}/commit", s.handleVariableCommit)
		r.Post("/variables/{variable}/focus", s.handleVariableFocus)
		r.Post("/variables/{variable}/unit", s.handleVariableUnit)
	})
	return r
}
