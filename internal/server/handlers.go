package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rgehrsitz/tpacalc/internal/calculation"
	"github.com/rgehrsitz/tpacalc/internal/config"
	"github.com/rgehrsitz/tpacalc/internal/domain"
	"github.com/rgehrsitz/tpacalc/internal/logging"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PlanRunner runs a full plan-year pass
type PlanRunner interface {
	RunPlan(ctx context.Context, census *domain.Census) (*domain.PlanReport, error)
}

// PlanRunnerFactory builds a PlanRunner for one request's snapshot
type PlanRunnerFactory func(snapshot *config.Snapshot, strategy domain.LevelingStrategy, distribution domain.DistributionMethod, logger calculation.Logger) PlanRunner

// DefaultPlanRunner builds a calculation.Engine
func DefaultPlanRunner(snapshot *config.Snapshot, strategy domain.LevelingStrategy, distribution domain.DistributionMethod, logger calculation.Logger) PlanRunner {
	engine := calculation.NewEngine(snapshot)
	if strategy != "" {
		engine.Strategy = strategy
	}
	if distribution != "" {
		engine.Distribution = distribution
	}
	engine.SetLogger(logger)
	return engine
}

type Handler struct {
	rules     config.Provider
	snapshot  *config.Snapshot
	newRunner PlanRunnerFactory
}

func NewHandler(rules config.Provider, snapshot *config.Snapshot, newRunner PlanRunnerFactory) *Handler {
	if newRunner == nil {
		newRunner = DefaultPlanRunner
	}
	return &Handler{
		rules:     rules,
		snapshot:  snapshot,
		newRunner: newRunner,
	}
}

type limitsResponse struct {
	PlanName   string                     `json:"plan_name"`
	SafeHarbor bool                       `json:"safe_harbor"`
	Limits     map[string]decimal.Decimal `json:"limits"`
	Defaulted  []string                   `json:"defaulted"`
}

type ndtRequest struct {
	Records         []domain.ContributionRecord `json:"records"`
	NHCEAverageRate decimal.Decimal             `json:"nhce_average_rate"`
	Kind            domain.TestKind             `json:"kind"`
	Strategy        domain.LevelingStrategy     `json:"strategy"`
	Distribution    domain.DistributionMethod   `json:"distribution"`
}

type planRequest struct {
	domain.Census
	Limits       map[string]decimal.Decimal `json:"limits,omitempty"`
	Strategy     domain.LevelingStrategy    `json:"strategy,omitempty"`
	Distribution domain.DistributionMethod  `json:"distribution,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetLimits(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, limitsResponse{
		PlanName:   h.snapshot.PlanName(),
		SafeHarbor: h.snapshot.SafeHarbor(),
		Limits:     h.snapshot.Limits(),
		Defaulted:  h.snapshot.Defaulted(),
	})
}

func (h *Handler) RunNDT(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var req ndtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, errors.New("invalid request body: "+err.Error()))
		return
	}
	if req.Kind == "" {
		req.Kind = domain.TestADP
	}

	result, err := calculation.RunLevelingTest(req.Records, req.NHCEAverageRate,
		calculation.WithKind(req.Kind),
		calculation.WithStrategy(req.Strategy),
		calculation.WithDistribution(req.Distribution),
		calculation.WithLogger(logging.NewAdapter(*logger)),
	)
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (h *Handler) CorrectAnnualAdditions(w http.ResponseWriter, r *http.Request) {
	var c domain.AnnualAdditionsCase
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, r, http.StatusBadRequest, errors.New("invalid request body: "+err.Error()))
		return
	}
	if !c.StatutoryDollarLimit.IsPositive() {
		c.StatutoryDollarLimit = h.snapshot.Section415c()
	}

	result, err := calculation.EvaluateAnnualAdditions(c)
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (h *Handler) RunPlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, errors.New("invalid request body: "+err.Error()))
		return
	}

	if err := config.NewInputParser().ValidateCensus(&req.Census); err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}

	snapshot := h.snapshot
	if len(req.Limits) > 0 {
		var err error
		snapshot, err = config.Capture(config.Overlay(config.StaticProvider{Limits: req.Limits}, h.rules))
		if err != nil {
			writeError(w, r, statusFor(err), err)
			return
		}
	}

	runner := h.newRunner(snapshot, req.Strategy, req.Distribution, logging.NewAdapter(*logger))
	report, err := runner.RunPlan(ctx, &req.Census)
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	var (
		invalid    *domain.InvalidInputError
		unresolved *domain.UnresolvedExcessError
		missing    *domain.ConfigurationMissingError
	)
	switch {
	case errors.As(err, &invalid), errors.As(err, &unresolved):
		return http.StatusUnprocessableEntity
	case errors.As(err, &missing):
		return http.StatusInternalServerError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	event := zerolog.Ctx(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = zerolog.Ctx(r.Context()).Error()
	}
	event.Err(err).Int("status", status).Msg("request failed")
	writeJSON(w, r, status, errorResponse{Error: err.Error()})
}
