// Package api exposes the coordinator's operations over HTTP with the
// fixed JSON contract. Handlers validate input, enqueue one task on the
// strand, and render the task's result; they never mutate game state
// themselves.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/scavenge/server/internal/model"
	"github.com/scavenge/server/internal/persist"
	"github.com/scavenge/server/internal/sim"
	"github.com/scavenge/server/internal/strand"
	"github.com/scavenge/server/internal/world"
)

// RecordLister pages through the retirement store.
type RecordLister interface {
	Records(ctx context.Context, start, maxItems int) ([]persist.RecordView, error)
}

type Server struct {
	game    *model.Game
	players *world.State
	sim     *sim.Simulator
	strand  *strand.Strand
	records RecordLister
	log     *zap.Logger

	autoTick bool
	wwwRoot  string

	router *mux.Router
}

func NewServer(game *model.Game, players *world.State, simulator *sim.Simulator, st *strand.Strand, records RecordLister, autoTick bool, wwwRoot string, log *zap.Logger) *Server {
	s := &Server{
		game:     game,
		players:  players,
		sim:      simulator,
		strand:   st,
		records:  records,
		log:      log,
		autoTick: autoTick,
		wwwRoot:  wwwRoot,
		router:   mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/maps", s.handleMaps).Methods(http.MethodGet, http.MethodHead)
	api.HandleFunc("/maps", s.notAllowed("GET, HEAD"))
	api.HandleFunc("/maps/{id}", s.handleMapByID).Methods(http.MethodGet, http.MethodHead)
	api.HandleFunc("/maps/{id}", s.notAllowed("GET, HEAD"))

	api.HandleFunc("/game/join", s.handleJoin).Methods(http.MethodPost)
	api.HandleFunc("/game/join", s.notAllowed("POST"))
	api.HandleFunc("/game/players", s.handlePlayers).Methods(http.MethodGet, http.MethodHead)
	api.HandleFunc("/game/players", s.notAllowed("GET, HEAD"))
	api.HandleFunc("/game/state", s.handleState).Methods(http.MethodGet, http.MethodHead)
	api.HandleFunc("/game/state", s.notAllowed("GET, HEAD"))
	api.HandleFunc("/game/player/action", s.handleAction).Methods(http.MethodPost)
	api.HandleFunc("/game/player/action", s.notAllowed("POST"))
	api.HandleFunc("/game/tick", s.handleTick).Methods(http.MethodPost)
	api.HandleFunc("/game/tick", s.notAllowed("POST"))
	api.HandleFunc("/game/records", s.handleRecords).Methods(http.MethodGet, http.MethodHead)
	api.HandleFunc("/game/records", s.notAllowed("GET, HEAD"))

	// Everything outside /api serves static content.
	s.router.PathPrefix("/").HandlerFunc(s.handleStatic).Methods(http.MethodGet, http.MethodHead)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.router.ServeHTTP(rec, r)
	s.log.Debug("request",
		zap.String("method", r.Method),
		zap.String("uri", r.RequestURI),
		zap.Int("status", rec.status),
		zap.Duration("duration", time.Since(start)))
}

// notAllowed rejects leftover methods on a route, advertising the
// allowed set.
func (s *Server) notAllowed(allow string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allow)
		writeError(w, &apiError{
			Status:  http.StatusMethodNotAllowed,
			Code:    codeInvalidMethod,
			Message: "Invalid method",
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
