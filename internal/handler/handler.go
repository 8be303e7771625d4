package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/middleware"
	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/models"
	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/repository"
	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/service"
)

const maxBodyBytes = 1 << 20

// Service is what the handlers need from the service layer
type Service interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	MarketRate(ctx context.Context) (*models.MarketRate, error)

	Calculate(p models.PropertyFinancials) models.CalculatedMetrics
	CalculateSensitivity(p models.PropertyFinancials) models.SensitivityResult
	CalculateExit(ctx context.Context, p models.PropertyFinancials, req models.ExitRequest) (*models.ExitScenarios, error)

	CreateProperty(ctx context.Context, p *models.PropertyFinancials) error
	PropertyMetrics(ctx context.Context, id int64) (*models.CalculatedMetrics, error)
	PropertySensitivity(ctx context.Context, id int64) (*models.SensitivityResult, error)
	PropertyExit(ctx context.Context, id int64, req models.ExitRequest) (*models.ExitScenarios, error)

	DealKPIs(ctx context.Context, id int64) (*models.DealKPIs, error)
	DealSensitivity(ctx context.Context, id int64) (*models.SensitivityResult, error)
	DealExit(ctx context.Context, id int64, req models.ExitRequest) (*models.ExitScenarios, error)
	LoanSchedule(ctx context.Context, dealID, loanID int64) ([]models.AmortizationEntry, error)
	UpdateUnit(ctx context.Context, dealID int64, u models.Unit) (*models.DealKPIs, error)
	SetActiveLoan(ctx context.Context, dealID, loanID int64) (*models.DealKPIs, error)
	UpdateDealAssumptions(ctx context.Context, dealID int64, patch models.DealAssumptionsPatch) (*models.DealKPIs, error)
}

type Handler struct {
	svc Service
	log *logrus.Logger
}

func NewHandler(svc Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Routes registers every endpoint on r. auth guards everything except
// registration, login, the market rate and the websocket.
func (h *Handler) Routes(r *mux.Router, auth mux.MiddlewareFunc, ws http.HandlerFunc) {
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/market/key-rate", h.KeyRate).Methods("GET")
	if ws != nil {
		r.HandleFunc("/ws", ws).Methods("GET")
	}

	api := r.PathPrefix("/").Subrouter()
	api.Use(auth)
	api.HandleFunc("/calculate", h.Calculate).Methods("POST")
	api.HandleFunc("/calculate/sensitivity", h.CalculateSensitivity).Methods("POST")
	api.HandleFunc("/calculate/exit", h.CalculateExit).Methods("POST")

	api.HandleFunc("/properties", h.CreateProperty).Methods("POST")
	api.HandleFunc("/properties/{id:[0-9]+}/metrics", h.PropertyMetrics).Methods("GET")
	api.HandleFunc("/properties/{id:[0-9]+}/sensitivity", h.PropertySensitivity).Methods("GET")
	api.HandleFunc("/properties/{id:[0-9]+}/exit", h.PropertyExit).Methods("POST")

	api.HandleFunc("/deals/{id:[0-9]+}/kpis", h.DealKPIs).Methods("GET")
	api.HandleFunc("/deals/{id:[0-9]+}/sensitivity", h.DealSensitivity).Methods("GET")
	api.HandleFunc("/deals/{id:[0-9]+}/exit", h.DealExit).Methods("POST")
	api.HandleFunc("/deals/{id:[0-9]+}/loans/{loanId:[0-9]+}/schedule", h.LoanSchedule).Methods("GET")
	api.HandleFunc("/deals/{id:[0-9]+}/loans/{loanId:[0-9]+}/activate", h.ActivateLoan).Methods("POST")
	api.HandleFunc("/deals/{id:[0-9]+}/units/{unitId:[0-9]+}", h.UpdateUnit).Methods("PUT")
	api.HandleFunc("/deals/{id:[0-9]+}/assumptions", h.UpdateAssumptions).Methods("PUT")
}

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.svc.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !h.decode(w, r, &req) {
		return
	}
	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// KeyRate reports the central-bank key rate and the refinance rate derived from it
func (h *Handler) KeyRate(w http.ResponseWriter, r *http.Request) {
	rate, err := h.svc.MarketRate(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rate)
}

// Calculate evaluates financials posted in the body
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var p models.PropertyFinancials
	if !h.decode(w, r, &p) {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Calculate(p))
}

// CalculateSensitivity sweeps financials posted in the body
func (h *Handler) CalculateSensitivity(w http.ResponseWriter, r *http.Request) {
	var p models.PropertyFinancials
	if !h.decode(w, r, &p) {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.CalculateSensitivity(p))
}

type calculateExitRequest struct {
	Property models.PropertyFinancials `json:"property"`
	models.ExitRequest
}

// CalculateExit projects financials posted in the body
func (h *Handler) CalculateExit(w http.ResponseWriter, r *http.Request) {
	var req calculateExitRequest
	if !h.decode(w, r, &req) {
		return
	}
	exit, ok := exitRequest(w, r, req.ExitRequest)
	if !ok {
		return
	}
	out, err := h.svc.CalculateExit(r.Context(), req.Property, exit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateProperty stores flat financials for the caller
func (h *Handler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	var p models.PropertyFinancials
	if !h.decode(w, r, &p) {
		return
	}
	if err := h.svc.CreateProperty(r.Context(), &p); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// PropertyMetrics evaluates a stored property
func (h *Handler) PropertyMetrics(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	h.respond(w, r)(h.svc.PropertyMetrics(r.Context(), id))
}

// PropertySensitivity sweeps a stored property
func (h *Handler) PropertySensitivity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	h.respond(w, r)(h.svc.PropertySensitivity(r.Context(), id))
}

// PropertyExit projects a stored property
func (h *Handler) PropertyExit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body models.ExitRequest
	if !h.decodeOptional(w, r, &body) {
		return
	}
	req, ok := exitRequest(w, r, body)
	if !ok {
		return
	}
	h.respond(w, r)(h.svc.PropertyExit(r.Context(), id, req))
}

// DealKPIs evaluates a stored deal
func (h *Handler) DealKPIs(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	h.respond(w, r)(h.svc.DealKPIs(r.Context(), id))
}

// DealSensitivity sweeps a stored deal
func (h *Handler) DealSensitivity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	h.respond(w, r)(h.svc.DealSensitivity(r.Context(), id))
}

// DealExit projects a stored deal
func (h *Handler) DealExit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body models.ExitRequest
	if !h.decodeOptional(w, r, &body) {
		return
	}
	req, ok := exitRequest(w, r, body)
	if !ok {
		return
	}
	h.respond(w, r)(h.svc.DealExit(r.Context(), id, req))
}

// LoanSchedule lists the monthly payments of a deal loan
func (h *Handler) LoanSchedule(w http.ResponseWriter, r *http.Request) {
	dealID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	loanID, ok := pathID(w, r, "loanId")
	if !ok {
		return
	}
	h.respond(w, r)(h.svc.LoanSchedule(r.Context(), dealID, loanID))
}

// ActivateLoan makes a loan the deal's active one
func (h *Handler) ActivateLoan(w http.ResponseWriter, r *http.Request) {
	dealID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	loanID, ok := pathID(w, r, "loanId")
	if !ok {
		return
	}
	h.respond(w, r)(h.svc.SetActiveLoan(r.Context(), dealID, loanID))
}

// UpdateUnit replaces a rent roll entry
func (h *Handler) UpdateUnit(w http.ResponseWriter, r *http.Request) {
	dealID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	unitID, ok := pathID(w, r, "unitId")
	if !ok {
		return
	}
	var u models.Unit
	if !h.decode(w, r, &u) {
		return
	}
	u.ID = unitID
	h.respond(w, r)(h.svc.UpdateUnit(r.Context(), dealID, u))
}

// UpdateAssumptions patches a deal's underwriting assumptions
func (h *Handler) UpdateAssumptions(w http.ResponseWriter, r *http.Request) {
	dealID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var patch models.DealAssumptionsPatch
	if !h.decode(w, r, &patch) {
		return
	}
	h.respond(w, r)(h.svc.UpdateDealAssumptions(r.Context(), dealID, patch))
}

// respond writes v as JSON, or the mapped error
func (h *Handler) respond(w http.ResponseWriter, r *http.Request) func(v any, err error) {
	return func(v any, err error) {
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}

// decodeOptional accepts an empty body
func (h *Handler) decodeOptional(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	return h.decode(w, r, v)
}

// exitRequest applies the useMarketRate query flag over the body
func exitRequest(w http.ResponseWriter, r *http.Request, req models.ExitRequest) (models.ExitRequest, bool) {
	if v := r.URL.Query().Get("useMarketRate"); v != "" {
		use, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "Invalid useMarketRate", http.StatusBadRequest)
			return req, false
		}
		req.UseMarketRate = use
	}
	if v := r.URL.Query().Get("years"); v != "" {
		years, err := strconv.Atoi(v)
		if err != nil || years < 0 {
			http.Error(w, "Invalid years", http.StatusBadRequest)
			return req, false
		}
		req.HoldPeriodYears = years
	}
	return req, true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid %s", name), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrDuplicate):
		status = http.StatusConflict
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrMarketRate):
		status = http.StatusBadGateway
	default:
		h.log.WithFields(logrus.Fields{
			"request_id": middleware.RequestID(r.Context()),
			"path":       r.URL.Path,
		}).WithError(err).Error("Request failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
