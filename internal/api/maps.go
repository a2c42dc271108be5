package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/scavenge/server/internal/model"
)

type mapSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type roadView struct {
	X0 int  `json:"x0"`
	Y0 int  `json:"y0"`
	X1 *int `json:"x1,omitempty"`
	Y1 *int `json:"y1,omitempty"`
}

type buildingView struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type officeView struct {
	ID      string `json:"id"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	OffsetX int    `json:"offsetX"`
	OffsetY int    `json:"offsetY"`
}

type mapView struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Roads     []roadView      `json:"roads"`
	Buildings []buildingView  `json:"buildings"`
	Offices   []officeView    `json:"offices"`
	LootTypes json.RawMessage `json:"lootTypes"`
}

// handleMaps lists the map catalog. The catalog is immutable after load,
// so no strand trip is needed.
func (s *Server) handleMaps(w http.ResponseWriter, r *http.Request) {
	maps := s.game.Maps()
	out := make([]mapSummary, len(maps))
	for i, m := range maps {
		out[i] = mapSummary{ID: m.ID, Name: m.Name}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMapByID(w http.ResponseWriter, r *http.Request) {
	m := s.game.Find(mux.Vars(r)["id"])
	if m == nil {
		writeError(w, errMapNotFound())
		return
	}
	writeJSON(w, http.StatusOK, mapDetail(m))
}

func mapDetail(m *model.Map) mapView {
	v := mapView{
		ID:        m.ID,
		Name:      m.Name,
		Roads:     make([]roadView, 0, len(m.Roads)),
		Buildings: make([]buildingView, 0, len(m.Buildings)),
		Offices:   make([]officeView, 0, len(m.Offices)),
		LootTypes: json.RawMessage(m.LootTypesJSON),
	}
	for _, r := range m.Roads {
		rv := roadView{X0: r.Start.X, Y0: r.Start.Y}
		if r.IsHorizontal() {
			x1 := r.End.X
			rv.X1 = &x1
		} else {
			y1 := r.End.Y
			rv.Y1 = &y1
		}
		v.Roads = append(v.Roads, rv)
	}
	for _, b := range m.Buildings {
		v.Buildings = append(v.Buildings, buildingView{X: b.Pos.X, Y: b.Pos.Y, W: b.Size.W, H: b.Size.H})
	}
	for _, o := range m.Offices {
		v.Offices = append(v.Offices, officeView{ID: o.ID, X: o.Pos.X, Y: o.Pos.Y, OffsetX: o.Offset.X, OffsetY: o.Offset.Y})
	}
	return v
}
