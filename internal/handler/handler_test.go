package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Dan9191/cashflow-service/internal/config"
	"github.com/Dan9191/cashflow-service/internal/ledger"
	"github.com/Dan9191/cashflow-service/internal/middleware"
	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/Dan9191/cashflow-service/internal/service"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func newRouter(t *testing.T, auth bool) *mux.Router {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := &config.Config{JWTSecret: "secret", HMACSecret: "hmac", AdminUser: "admin"}
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	mem := ledger.NewMemory(models.DefaultSettings(), decimal.NewFromInt(50))
	svc := service.NewService(mem, log, cfg, service.WithClock(func() time.Time { return now }))

	r := mux.NewRouter()
	var mw mux.MiddlewareFunc
	if auth {
		mw = middleware.AuthMiddleware(cfg)
	}
	NewHandler(svc).Routes(r, mw)
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code, env
}

func TestCreateTransaction(t *testing.T) {
	r := newRouter(t, false)

	code, env := do(t, r, "POST", "/api/transactions", `{"type":"variable","amount":30,"description":"mercado"}`)
	if code != http.StatusCreated || !env.Success {
		t.Fatalf("status = %d, env = %+v", code, env)
	}
	var reg models.Registration
	if err := json.Unmarshal(env.Data, &reg); err != nil {
		t.Fatal(err)
	}
	if reg.Action != models.ActionReplaced || !reg.NewBalance.Equal(decimal.NewFromInt(-30)) {
		t.Fatalf("registration = %+v", reg)
	}

	code, env = do(t, r, "POST", "/api/transactions", `{"type":"gift","amount":30}`)
	if code != http.StatusBadRequest || env.Success {
		t.Fatalf("unknown kind: status = %d, env = %+v", code, env)
	}
	code, _ = do(t, r, "POST", "/api/transactions", `{"type":`)
	if code != http.StatusBadRequest {
		t.Fatalf("malformed body status = %d, want 400", code)
	}
	code, _ = do(t, r, "POST", "/api/transactions", `{"type":"income","amount":10,"date":"15/06/2025"}`)
	if code != http.StatusBadRequest {
		t.Fatalf("bad date status = %d, want 400", code)
	}
}

func TestListTransactions(t *testing.T) {
	r := newRouter(t, false)
	do(t, r, "POST", "/api/transactions/bulk",
		`[{"type":"income","amount":1000,"date":"2025-06-01"},{"type":"fixed","amount":300,"date":"2025-06-02"}]`)

	code, env := do(t, r, "GET", "/api/transactions?type=fixed", "")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	var entries []models.CashFlowEntry
	if err := json.Unmarshal(env.Data, &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Kind != models.KindFixed {
		t.Fatalf("entries = %+v", entries)
	}

	if code, _ := do(t, r, "GET", "/api/transactions?start=2025-07-01&end=2025-06-01", ""); code != http.StatusBadRequest {
		t.Fatalf("inverted range status = %d, want 400", code)
	}
}

func TestProjection_ClampsMonths(t *testing.T) {
	r := newRouter(t, false)
	code, env := do(t, r, "GET", "/api/projection?months=40", "")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	var rep models.ProjectionReport
	if err := json.Unmarshal(env.Data, &rep); err != nil {
		t.Fatal(err)
	}
	if rep.Months != 6 || len(rep.Points) != 6 {
		t.Fatalf("months = %d, points = %d", rep.Months, len(rep.Points))
	}

	if code, _ := do(t, r, "GET", "/api/projection?months=six", ""); code != http.StatusBadRequest {
		t.Fatalf("non-numeric months status = %d, want 400", code)
	}
}

func TestSimulationRoutes(t *testing.T) {
	r := newRouter(t, false)

	code, env := do(t, r, "POST", "/api/simulate/loan", `{"value":10000,"monthly_rate":2,"term":18}`)
	if code != http.StatusOK {
		t.Fatalf("simulate status = %d, env = %+v", code, env)
	}
	var sim models.Simulation
	if err := json.Unmarshal(env.Data, &sim); err != nil {
		t.Fatal(err)
	}
	if !sim.Group.InstallmentValue.Equal(decimal.RequireFromString("667.02")) {
		t.Fatalf("installment = %s", sim.Group.InstallmentValue)
	}

	path := "/api/simulate/" + strconv.FormatInt(sim.Group.ID, 10)
	if code, _ := do(t, r, "POST", path+"/confirm", ""); code != http.StatusOK {
		t.Fatalf("confirm status = %d", code)
	}
	if code, _ := do(t, r, "DELETE", path, ""); code != http.StatusConflict {
		t.Fatalf("cancel confirmed status = %d, want 409", code)
	}
	if code, _ := do(t, r, "DELETE", "/api/simulate/999", ""); code != http.StatusNotFound {
		t.Fatalf("cancel unknown status = %d, want 404", code)
	}

	code, env = do(t, r, "GET", "/api/installments/"+strconv.FormatInt(sim.Group.ID, 10)+"/verify", "")
	if code != http.StatusOK || !strings.Contains(string(env.Data), `"verified":true`) {
		t.Fatalf("verify status = %d, data = %s", code, env.Data)
	}

	if code, _ := do(t, r, "POST", "/api/simulate/installment", `{"description":"tv","value":4200,"installments":0}`); code != http.StatusBadRequest {
		t.Fatalf("zero installments status = %d, want 400", code)
	}
}

func TestMonthReport_InvalidMonth(t *testing.T) {
	r := newRouter(t, false)
	if code, _ := do(t, r, "GET", "/api/reports/month?month=13&year=2025", ""); code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", code)
	}
	if code, _ := do(t, r, "GET", "/api/reports/month", ""); code != http.StatusOK {
		t.Fatalf("current month status = %d, want 200", code)
	}
}

func TestQuickAndSweep(t *testing.T) {
	r := newRouter(t, false)
	code, env := do(t, r, "POST", "/api/transactions/quick", `{"text":"aluguel 1200"}`)
	if code != http.StatusOK || !strings.Contains(string(env.Data), `"kind":"fixed"`) {
		t.Fatalf("quick status = %d, data = %s", code, env.Data)
	}

	code, env = do(t, r, "POST", "/api/sweep?date=2025-06-10", "")
	if code != http.StatusOK || !strings.Contains(string(env.Data), `"zeroed":true`) {
		t.Fatalf("sweep status = %d, data = %s", code, env.Data)
	}
}

func TestAuthRequired(t *testing.T) {
	r := newRouter(t, true)
	req := httptest.NewRequest("GET", "/api/status", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/login", strings.NewReader(`{"username":"admin","password":"x"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("login without configured hash status = %d, want 401", rec.Code)
	}
}
