package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/louisbranch/stagesim/internal/batch"
	"github.com/louisbranch/stagesim/internal/loadout"
	"github.com/louisbranch/stagesim/internal/random"
	"github.com/louisbranch/stagesim/internal/strategy"
)

// SimulateRequest asks for a batch of simulations of one loadout.
type SimulateRequest struct {
	Loadout  loadout.Config `json:"loadout"`
	Runs     int            `json:"runs"`
	Seed     int64          `json:"seed"`
	Strategy string         `json:"strategy"`
	KeepLogs bool           `json:"keepLogs"`
}

// SimulateResponse is the outcome of a SimulateRequest.
type SimulateResponse struct {
	Loadout loadout.Loadout `json:"loadout"`
	Report  batch.Report    `json:"report"`
}

func (s *Server) handleStage(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	stage, err := s.catalog.Stage(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stage)
}

func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	card, err := s.catalog.Card(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"strategies": strategy.Names()})
}

// handleSimulate runs a batch and returns its report. Identical seeded
// requests in flight at the same time share one batch.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, r, invalidRequest("malformed body", err))
		return
	}

	if req.Seed == 0 {
		resp, err := s.simulate(r.Context(), req, nil)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	key, err := flightKey(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err, shared := s.flights.Do(key, func() (any, error) {
		return s.simulate(context.WithoutCancel(r.Context()), req, nil)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if shared {
		w.Header().Set("X-Simulation-Shared", "true")
	}
	writeJSON(w, http.StatusOK, v.(SimulateResponse))
}

// simulate resolves the request's loadout and runs its batch. onRun, when
// set, observes every completed run.
func (s *Server) simulate(ctx context.Context, req SimulateRequest, onRun func(batch.RunResult)) (SimulateResponse, error) {
	runs := req.Runs
	if runs == 0 {
		runs = 1
	}
	if runs < 1 || runs > s.maxRuns {
		return SimulateResponse{}, invalidRequest(fmt.Sprintf("runs must be between 1 and %d", s.maxRuns), nil)
	}
	name := strings.ToLower(strings.TrimSpace(req.Strategy))
	if name != "" && !slices.Contains(strategy.Names(), name) {
		return SimulateResponse{}, invalidRequest(fmt.Sprintf("unknown strategy %q", req.Strategy), nil)
	}

	stage, err := s.catalog.Stage(req.Loadout.StageID)
	if err != nil {
		return SimulateResponse{}, err
	}
	resolved, err := loadout.NewResolver(s.catalog).Resolve(req.Loadout, stage)
	if err != nil {
		return SimulateResponse{}, err
	}
	seed, err := random.SeedOr(req.Seed)
	if err != nil {
		return SimulateResponse{}, err
	}

	runner := &batch.Runner{
		Stage:    stage,
		Loadout:  resolved,
		Catalog:  s.catalog,
		Strategy: name,
		Workers:  s.workers,
		KeepLogs: req.KeepLogs,
		OnRun:    onRun,
	}
	report, err := runner.Run(ctx, runs, seed)
	if err != nil {
		return SimulateResponse{}, err
	}
	return SimulateResponse{Loadout: resolved, Report: report}, nil
}

func flightKey(req SimulateRequest) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", invalidRequest("encode request", err)
	}
	return string(data), nil
}
