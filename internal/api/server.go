// Package api serves the city over HTTP. GET endpoints are public read-only
// snapshots; POST endpoints are the admin control plane behind a bearer
// token.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/talgya/energyville/internal/building"
	"github.com/talgya/energyville/internal/game"
	"github.com/talgya/energyville/internal/persistence"
)

// Server exposes one game session.
type Server struct {
	Session  *game.Session
	DB       *persistence.DB
	Seed     int64
	Port     int
	AdminKey string // bearer token for POST endpoints; empty = POST disabled
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Public snapshots.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/buildings", s.handleBuildings)
	mux.HandleFunc("/api/v1/energy", s.handleEnergy)
	mux.HandleFunc("/api/v1/economy", s.handleEconomy)
	mux.HandleFunc("/api/v1/population", s.handlePopulation)
	mux.HandleFunc("/api/v1/recommendations", s.handleRecommendations)
	mux.HandleFunc("/api/v1/history", s.handleHistory)

	// Admin commands.
	mux.HandleFunc("/api/v1/construct", s.adminOnly(s.handleConstruct))
	mux.HandleFunc("/api/v1/building", s.adminOnly(s.handleBuildingCommand))
	mux.HandleFunc("/api/v1/plant", s.adminOnly(s.handlePlantCommand))
	mux.HandleFunc("/api/v1/economy/price", s.adminOnly(s.handlePrice))
	mux.HandleFunc("/api/v1/economy/loan", s.adminOnly(s.handleLoan))
	mux.HandleFunc("/api/v1/time", s.adminOnly(s.handleTime))
	mux.HandleFunc("/api/v1/save", s.adminOnly(s.handleSave))

	return mux
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	handler := s.Handler()
	go func() {
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeResult(w http.ResponseWriter, res game.Result) {
	if !res.OK {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	writeJSON(w, res)
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly requires POST plus a valid bearer token.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no admin key configured)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Session.Stats())
}

func (s *Server) handleBuildings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Session.Buildings())
}

func (s *Server) handleEnergy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Session.Energy())
}

func (s *Server) handleEconomy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Session.Finances())
}

func (s *Server) handlePopulation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Session.Demographics())
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"recommendations": s.Session.Recommendations()})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"samples": s.Session.HistorySamples()})
}

func decode[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func (s *Server) handleConstruct(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[struct {
		Kind string `json:"kind"` // "plant" or "infrastructure"
		Type string `json:"type"` // tech or catalog kind
		X    int    `json:"x"`
		Y    int    `json:"y"`
	}](w, r)
	if !ok {
		return
	}
	switch req.Kind {
	case "plant":
		writeResult(w, s.Session.ConstructPowerPlant(building.Tech(req.Type), req.X, req.Y))
	case "infrastructure":
		writeResult(w, s.Session.ConstructInfrastructure(building.Kind(req.Type), req.X, req.Y))
	default:
		http.Error(w, "kind must be plant or infrastructure", http.StatusBadRequest)
	}
}

func (s *Server) handleBuildingCommand(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[struct {
		Action string `json:"action"` // upgrade, demolish, toggle
		ID     string `json:"id"`
	}](w, r)
	if !ok {
		return
	}
	switch req.Action {
	case "upgrade":
		writeResult(w, s.Session.UpgradeBuilding(req.ID))
	case "demolish":
		writeResult(w, s.Session.DemolishBuilding(req.ID))
	case "toggle":
		writeResult(w, s.Session.ToggleBuilding(req.ID))
	default:
		http.Error(w, "unknown building action", http.StatusBadRequest)
	}
}

func (s *Server) handlePlantCommand(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[struct {
		Action string  `json:"action"` // maintain, buy_coal, refuel, shutdown, restart
		ID     string  `json:"id"`
		Amount float64 `json:"amount,omitempty"`
	}](w, r)
	if !ok {
		return
	}
	switch req.Action {
	case "maintain":
		writeResult(w, s.Session.PerformMaintenance(req.ID))
	case "buy_coal":
		writeResult(w, s.Session.BuyCoal(req.ID, req.Amount))
	case "refuel":
		writeResult(w, s.Session.RefuelNuclear(req.ID, req.Amount))
	case "shutdown":
		writeResult(w, s.Session.EmergencyShutdown(req.ID))
	case "restart":
		writeResult(w, s.Session.RestartNuclear(req.ID))
	default:
		http.Error(w, "unknown plant action", http.StatusBadRequest)
	}
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[struct {
		Price float64 `json:"price"`
	}](w, r)
	if !ok {
		return
	}
	writeResult(w, s.Session.AdjustElectricityPrice(req.Price))
}

func (s *Server) handleLoan(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.Session.RequestLoan())
}

func (s *Server) handleTime(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[struct {
		Action string `json:"action"` // pause, faster, slower, set_speed, skip, skip_day, skip_month
		Speed  string `json:"speed,omitempty"`
		Hours  int    `json:"hours,omitempty"`
	}](w, r)
	if !ok {
		return
	}
	switch req.Action {
	case "pause":
		writeResult(w, s.Session.TogglePause())
	case "faster":
		writeResult(w, s.Session.IncreaseSpeed())
	case "slower":
		writeResult(w, s.Session.DecreaseSpeed())
	case "set_speed":
		writeResult(w, s.Session.SetSpeed(req.Speed))
	case "skip":
		writeResult(w, s.Session.SkipHours(req.Hours))
	case "skip_day":
		writeResult(w, s.Session.SkipToNextDay())
	case "skip_month":
		writeResult(w, s.Session.SkipToNextMonth())
	default:
		http.Error(w, "unknown time action", http.StatusBadRequest)
	}
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "persistence disabled", http.StatusServiceUnavailable)
		return
	}
	if err := s.DB.Save(s.Session, s.Seed); err != nil {
		slog.Error("save failed", "error", err)
		http.Error(w, "save failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, game.Result{OK: true, Message: "game saved"})
}
