package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fortuna/dugout/internal/ingest/hittrax"
	"github.com/fortuna/dugout/internal/store"
	"github.com/fortuna/dugout/internal/storyline"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	router  *mux.Router
	handler *Handler
}

// NewServer creates a new REST API server
func NewServer(port string, st store.Store, ingester *hittrax.Ingester, storylines *storyline.Service) *Server {
	handler := NewHandler(st, ingester, storylines)

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Games
	api.HandleFunc("/games/upload_csv", handler.UploadCSV).Methods("POST")
	api.HandleFunc("/games", handler.GetGames).Methods("GET")
	api.HandleFunc("/games/{gameID}", handler.GetGame).Methods("GET")

	// Players
	api.HandleFunc("/players", handler.GetPlayers).Methods("GET")
	api.HandleFunc("/players/teams/list", handler.GetTeamList).Methods("GET")
	api.HandleFunc("/players/{playerID}", handler.GetPlayer).Methods("GET")
	api.HandleFunc("/players/{playerID}/scouting_report", handler.GetScoutingReport).Methods("GET")

	// Stats
	api.HandleFunc("/stats/leaderboard", handler.GetLeaderboard).Methods("GET")

	// Teams
	api.HandleFunc("/teams", handler.GetTeams).Methods("GET")
	api.HandleFunc("/teams/{teamName}/stats", handler.GetTeamStats).Methods("GET")
	api.HandleFunc("/teams/{teamName}/roster", handler.GetTeamRoster).Methods("GET")
	api.HandleFunc("/teams/{teamName}/games", handler.GetTeamGames).Methods("GET")

	// Storylines
	api.HandleFunc("/storylines/games/{gameID}/generate", handler.GenerateStoryline).Methods("POST")
	api.HandleFunc("/storylines/games/{gameID}/summary", handler.GetStorylineSummary).Methods("GET")
	api.HandleFunc("/storylines/games/{gameID}/exists", handler.StorylineExists).Methods("GET")
	api.HandleFunc("/storylines/games/{gameID}", handler.GetStoryline).Methods("GET")

	return &Server{
		port:    port,
		router:  router,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Router exposes the route table, used by the HTTP tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
