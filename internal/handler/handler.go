package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/Dan9191/cashflow-service/internal/service"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes registers public routes on r and protected routes behind auth
func (h *Handler) Routes(r *mux.Router, auth mux.MiddlewareFunc) {
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/key-rate", h.KeyRate).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	if auth != nil {
		api.Use(auth)
	}
	api.HandleFunc("/status", h.Status).Methods("GET")
	api.HandleFunc("/dashboard", h.Dashboard).Methods("GET")
	api.HandleFunc("/reports/month", h.MonthReport).Methods("GET")
	api.HandleFunc("/reports/week", h.WeekReport).Methods("GET")
	api.HandleFunc("/projection", h.Projection).Methods("GET")
	api.HandleFunc("/alerts", h.Alerts).Methods("GET")
	api.HandleFunc("/transactions", h.ListTransactions).Methods("GET")
	api.HandleFunc("/transactions", h.CreateTransaction).Methods("POST")
	api.HandleFunc("/transactions/bulk", h.CreateTransactions).Methods("POST")
	api.HandleFunc("/transactions/quick", h.QuickCommand).Methods("POST")
	api.HandleFunc("/sweep", h.Sweep).Methods("POST")
	api.HandleFunc("/simulate/loan", h.SimulateLoan).Methods("POST")
	api.HandleFunc("/simulate/installment", h.SimulatePurchase).Methods("POST")
	api.HandleFunc("/simulate/{id:[0-9]+}/confirm", h.ConfirmSimulation).Methods("POST")
	api.HandleFunc("/simulate/{id:[0-9]+}", h.CancelSimulation).Methods("DELETE")
	api.HandleFunc("/installments/{id:[0-9]+}/verify", h.VerifyInstallment).Methods("GET")
	api.HandleFunc("/max-installment", h.MaxInstallment).Methods("GET")
	api.HandleFunc("/categories", h.Categories).Methods("GET")
	api.HandleFunc("/settings", h.GetSettings).Methods("GET")
	api.HandleFunc("/settings", h.SaveSettings).Methods("PUT")
}

// statusFor maps the error taxonomy to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInconsistentState):
		return http.StatusConflict
	case errors.Is(err, models.ErrContention):
		return http.StatusLocked
	case errors.Is(err, models.ErrUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, models.ErrDataUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// writeResult renders a result envelope with the status code its error maps to
func writeResult[T any](w http.ResponseWriter, res models.Result[T]) {
	code := http.StatusOK
	if !res.Success {
		code = statusFor(res.Err)
	}
	writeJSON(w, code, res)
}

func badRequest(w http.ResponseWriter, format string, args ...any) {
	err := fmt.Errorf("%w: "+format, append([]any{models.ErrInvalidInput}, args...)...)
	writeResult(w, models.Fail[struct{}](err))
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		badRequest(w, "malformed body: %v", err)
		return false
	}
	return true
}

// parseDate reads YYYY-MM-DD in the service's time zone; empty is the zero time
func (h *Handler) parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation("2006-01-02", s, h.svc.Today().Location())
}

func queryInt(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "cashflow-service"})
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decode(w, r, &body) {
		return
	}
	token, err := h.svc.Login(body.Username, body.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// KeyRate returns the reference monthly rate used for loan simulations
func (h *Handler) KeyRate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"monthly_rate_pct": h.svc.DefaultLoanRate(r.Context())})
}

// Status handles compute_status; ?strategy= selects the classification
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.svc.ComputeStatus(r.Context(), r.URL.Query().Get("strategy")))
}

// Dashboard returns the overview bundle
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.svc.Dashboard(r.Context()))
}

// MonthReport handles compute_month_report
func (h *Handler) MonthReport(w http.ResponseWriter, r *http.Request) {
	month, err := queryInt(r, "month")
	if err != nil {
		badRequest(w, "month must be a number")
		return
	}
	year, err := queryInt(r, "year")
	if err != nil {
		badRequest(w, "year must be a number")
		return
	}
	writeResult(w, h.svc.ComputeMonthReport(r.Context(), year, time.Month(month)))
}

// WeekReport handles compute_week_report
func (h *Handler) WeekReport(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.svc.ComputeWeekReport(r.Context()))
}

// Projection handles compute_projection; out-of-range horizons use the default
func (h *Handler) Projection(w http.ResponseWriter, r *http.Request) {
	months, err := queryInt(r, "months")
	if err != nil {
		badRequest(w, "months must be a number")
		return
	}
	writeResult(w, h.svc.ComputeProjection(r.Context(), months))
}

// Alerts handles evaluate_alerts
func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.svc.EvaluateAlerts(r.Context()))
}

// ListTransactions lists entries with optional start, end, type and limit filters
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f service.EntryFilter
	var err error
	if f.Start, err = h.parseDate(q.Get("start")); err != nil {
		badRequest(w, "start: %v", err)
		return
	}
	if f.End, err = h.parseDate(q.Get("end")); err != nil {
		badRequest(w, "end: %v", err)
		return
	}
	if t := q.Get("type"); t != "" {
		if f.Kind, err = models.ParseFlowKind(t); err != nil {
			writeResult(w, models.Fail[struct{}](err))
			return
		}
	}
	if f.Limit, err = queryInt(r, "limit"); err != nil || f.Limit < 0 {
		badRequest(w, "limit must be a positive number")
		return
	}
	writeResult(w, h.svc.ListEntries(r.Context(), f))
}

type flowBody struct {
	Kind        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
}

func (h *Handler) flowRequest(b flowBody) (service.FlowRequest, error) {
	kind, err := models.ParseFlowKind(b.Kind)
	if err != nil {
		return service.FlowRequest{}, err
	}
	day, err := h.parseDate(b.Date)
	if err != nil {
		return service.FlowRequest{}, fmt.Errorf("%w: date: %v", models.ErrInvalidInput, err)
	}
	return service.FlowRequest{
		Kind:        kind,
		Amount:      b.Amount.Abs(),
		Description: b.Description,
		Category:    b.Category,
		Date:        day,
	}, nil
}

// CreateTransaction handles register_flow
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var body flowBody
	if !decode(w, r, &body) {
		return
	}
	req, err := h.flowRequest(body)
	if err != nil {
		writeResult(w, models.Fail[struct{}](err))
		return
	}
	res := h.svc.RegisterFlow(r.Context(), req)
	if res.Success {
		writeJSON(w, http.StatusCreated, res)
		return
	}
	writeResult(w, res)
}

// CreateTransactions registers a list of entries in order
func (h *Handler) CreateTransactions(w http.ResponseWriter, r *http.Request) {
	var body []flowBody
	if !decode(w, r, &body) {
		return
	}
	reqs := make([]service.FlowRequest, 0, len(body))
	for i, b := range body {
		req, err := h.flowRequest(b)
		if err != nil {
			writeResult(w, models.Fail[struct{}](fmt.Errorf("item %d: %w", i, err)))
			return
		}
		reqs = append(reqs, req)
	}
	writeResult(w, h.svc.RegisterBulk(r.Context(), reqs))
}

// QuickCommand runs a chat-style command such as "mercado 87"
func (h *Handler) QuickCommand(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if !decode(w, r, &body) {
		return
	}
	writeResult(w, h.svc.QuickCommand(r.Context(), body.Text))
}

// Sweep runs the end-of-day reconciliation; ?date= defaults to yesterday
func (h *Handler) Sweep(w http.ResponseWriter, r *http.Request) {
	day, err := h.parseDate(r.URL.Query().Get("date"))
	if err != nil {
		badRequest(w, "date: %v", err)
		return
	}
	if day.IsZero() {
		writeResult(w, h.svc.SweepYesterday(r.Context()))
		return
	}
	writeResult(w, h.svc.SweepDay(r.Context(), day))
}

// SimulateLoan handles simulate_loan
func (h *Handler) SimulateLoan(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Value       decimal.Decimal  `json:"value"`
		MonthlyRate *decimal.Decimal `json:"monthly_rate"`
		Term        int              `json:"term"`
		StartDate   string           `json:"start_date"`
	}
	if !decode(w, r, &body) {
		return
	}
	start, err := h.parseDate(body.StartDate)
	if err != nil {
		badRequest(w, "start_date: %v", err)
		return
	}
	writeResult(w, h.svc.SimulateLoan(r.Context(), service.LoanRequest{
		Principal: body.Value,
		RatePct:   body.MonthlyRate,
		Term:      body.Term,
		StartDate: start,
	}))
}

// SimulatePurchase handles simulate_purchase
func (h *Handler) SimulatePurchase(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Description  string          `json:"description"`
		Value        decimal.Decimal `json:"value"`
		Installments int             `json:"installments"`
		StartDate    string          `json:"start_date"`
	}
	if !decode(w, r, &body) {
		return
	}
	start, err := h.parseDate(body.StartDate)
	if err != nil {
		badRequest(w, "start_date: %v", err)
		return
	}
	writeResult(w, h.svc.SimulatePurchase(r.Context(), service.PurchaseRequest{
		Description:  body.Description,
		Value:        body.Value,
		Installments: body.Installments,
		StartDate:    start,
	}))
}

// ConfirmSimulation handles confirm_simulation
func (h *Handler) ConfirmSimulation(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.svc.ConfirmSimulation(r.Context(), pathID(r)))
}

// CancelSimulation handles cancel_simulation
func (h *Handler) CancelSimulation(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.svc.CancelSimulation(r.Context(), pathID(r)))
}

// VerifyInstallment checks a confirmed group's signature
func (h *Handler) VerifyInstallment(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.svc.VerifyInstallment(r.Context(), pathID(r)))
}

// MaxInstallment returns the largest affordable new installment; ?keep=green|yellow|red
func (h *Handler) MaxInstallment(w http.ResponseWriter, r *http.Request) {
	keep := models.TrafficState(r.URL.Query().Get("keep"))
	writeResult(w, h.svc.MaxInstallment(r.Context(), keep))
}

// Categories lists the known categories
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	writeResult(w, models.OK(h.svc.Categories()))
}

// GetSettings returns the planning parameters
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.svc.Settings(r.Context()))
}

// SaveSettings replaces the planning parameters
func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var body models.UserSettings
	if !decode(w, r, &body) {
		return
	}
	writeResult(w, h.svc.SaveSettings(r.Context(), body))
}
