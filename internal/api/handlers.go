package api

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/scavenge/server/internal/model"
	"github.com/scavenge/server/internal/world"
)

const maxRecordsPage = 100

var tokenPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

// bearerToken extracts and validates the Authorization header. Any
// deviation from "Bearer " + 32 hex characters is an invalidToken 401.
func bearerToken(r *http.Request) (string, *apiError) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return "", errInvalidToken()
	}
	token := strings.TrimPrefix(h, prefix)
	if !tokenPattern.MatchString(token) {
		return "", errInvalidToken()
	}
	return token, nil
}

type joinRequest struct {
	UserName *string `json:"userName"`
	MapID    *string `json:"mapId"`
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errBadRequest("Join game request parse error"))
		return
	}
	if req.UserName == nil || *req.UserName == "" {
		writeError(w, errBadRequest("Invalid name"))
		return
	}
	if req.MapID == nil {
		writeError(w, errBadRequest("Invalid mapId"))
		return
	}
	m := s.game.Find(*req.MapID)
	if m == nil {
		writeError(w, errMapNotFound())
		return
	}

	var token string
	var player *world.Player
	if err := s.strand.Do(r.Context(), func() {
		token, player = s.players.Join(*req.UserName, m)
	}); err != nil {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"authToken": token,
		"playerId":  player.ID,
	})
}

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	token, apiErr := bearerToken(r)
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}

	var result map[string]any
	var authErr *apiError
	if err := s.strand.Do(r.Context(), func() {
		p := s.players.Lookup(token)
		if p == nil {
			authErr = errUnknownToken()
			return
		}
		result = make(map[string]any)
		for _, other := range s.players.PlayersOnMap(p.Map.ID) {
			result[strconv.Itoa(other.ID)] = map[string]string{"name": other.Name}
		}
	}); err != nil {
		return
	}
	if authErr != nil {
		writeError(w, authErr)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type bagItemView struct {
	ID   int `json:"id"`
	Type int `json:"type"`
}

type playerStateView struct {
	Pos   [2]float64    `json:"pos"`
	Speed [2]float64    `json:"speed"`
	Dir   string        `json:"dir"`
	Bag   []bagItemView `json:"bag"`
	Score int           `json:"score"`
}

type lostObjectView struct {
	Type int        `json:"type"`
	Pos  [2]float64 `json:"pos"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	token, apiErr := bearerToken(r)
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}

	var players map[string]playerStateView
	var lost map[string]lostObjectView
	var authErr *apiError
	if err := s.strand.Do(r.Context(), func() {
		p := s.players.Lookup(token)
		if p == nil {
			authErr = errUnknownToken()
			return
		}

		players = make(map[string]playerStateView)
		for _, other := range s.players.PlayersOnMap(p.Map.ID) {
			dog := other.Dog
			bag := make([]bagItemView, len(dog.Bag))
			for i, l := range dog.Bag {
				bag[i] = bagItemView{ID: l.ID, Type: l.Type}
			}
			players[strconv.Itoa(other.ID)] = playerStateView{
				Pos:   [2]float64{dog.Pos.X, dog.Pos.Y},
				Speed: [2]float64{dog.Speed.X, dog.Speed.Y},
				Dir:   string(dog.Dir),
				Bag:   bag,
				Score: dog.Score,
			}
		}

		lost = make(map[string]lostObjectView)
		for _, l := range p.Map.Loots {
			lost[strconv.Itoa(l.ID)] = lostObjectView{
				Type: l.Type,
				Pos:  [2]float64{l.Pos.X, l.Pos.Y},
			}
		}
	}); err != nil {
		return
	}
	if authErr != nil {
		writeError(w, authErr)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"players":     players,
		"lostObjects": lost,
	})
}

type actionRequest struct {
	Move *string `json:"move"`
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	token, apiErr := bearerToken(r)
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Move == nil {
		writeError(w, errBadRequest("Failed to parse action"))
		return
	}

	var dir byte
	if move := *req.Move; move != "" {
		if len(move) != 1 || !model.ValidDirection(move[0]) {
			writeError(w, errBadRequest("Failed to parse action"))
			return
		}
		dir = move[0]
	}

	var authErr *apiError
	if err := s.strand.Do(r.Context(), func() {
		p := s.players.Lookup(token)
		if p == nil {
			authErr = errUnknownToken()
			return
		}
		p.Dog.SetMove(p.Map.DogSpeed, dir)
	}); err != nil {
		return
	}
	if authErr != nil {
		writeError(w, authErr)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

type tickRequest struct {
	TimeDelta *int64 `json:"timeDelta"`
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	if s.autoTick {
		w.Header().Set("Allow", "")
		writeError(w, &apiError{
			Status:  http.StatusMethodNotAllowed,
			Code:    codeInvalidMethod,
			Message: "Tick endpoint is disabled in automatic tick mode",
		})
		return
	}

	var req tickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TimeDelta == nil {
		writeError(w, errBadRequest("Failed to parse tick request JSON"))
		return
	}
	if *req.TimeDelta <= 0 {
		writeError(w, errBadRequest("timeDelta must be positive"))
		return
	}

	if err := s.strand.Do(r.Context(), func() {
		s.sim.Tick(*req.TimeDelta)
	}); err != nil {
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	start := 0
	maxItems := maxRecordsPage

	q := r.URL.Query()
	if v := q.Get("start"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, errBadRequest("Invalid start parameter"))
			return
		}
		start = n
	}
	if v := q.Get("maxItems"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > maxRecordsPage {
			writeError(w, errBadRequest("Invalid maxItems parameter"))
			return
		}
		maxItems = n
	}

	views, err := s.records.Records(r.Context(), start, maxItems)
	if err != nil {
		s.log.Error("records query failed", zap.Error(err))
		writeError(w, &apiError{
			Status:  http.StatusInternalServerError,
			Code:    codeInternalError,
			Message: "Failed to read records",
		})
		return
	}
	writeJSON(w, http.StatusOK, views)
}
