package payrollhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce/internal/domain/auth"
	"workforce/internal/domain/payroll"
	"workforce/internal/platform/storage"
	"workforce/internal/transport/http/middleware"
)

type fakeService struct {
	records map[string]payroll.Record
	payslip []byte
	link    string
	paid    int
}

func (f *fakeService) visible(user auth.UserContext, rec payroll.Record) bool {
	return user.RoleName != auth.RoleEmployee || rec.ProfileID == user.UserID
}

func (f *fakeService) List(_ context.Context, user auth.UserContext, filter payroll.Filter, _, _ int) ([]payroll.Record, int, error) {
	out := []payroll.Record{}
	for _, rec := range f.records {
		if !f.visible(user, rec) {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		out = append(out, rec)
	}
	return out, len(out), nil
}

func (f *fakeService) Get(_ context.Context, user auth.UserContext, id string) (*payroll.Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if !f.visible(user, rec) {
		return nil, payroll.ErrNotOwner
	}
	return &rec, nil
}

func (f *fakeService) Generate(_ context.Context, req payroll.GenerateRequest) (payroll.GenerateResult, error) {
	return payroll.GenerateResult{
		PeriodStart: req.PeriodStart.Format("2006-01-02"),
		PeriodEnd:   req.PeriodEnd.Format("2006-01-02"),
		Created:     2,
		Skipped:     map[string]string{},
	}, nil
}

func (f *fakeService) UpdateDeductions(_ context.Context, id string, deductions float64) (*payroll.Record, *payroll.Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, nil, pgx.ErrNoRows
	}
	if rec.Status != payroll.StatusPending {
		return nil, nil, payroll.ErrNotPending
	}
	before := rec
	rec.Deductions = deductions
	rec.NetPay = rec.GrossPay - deductions
	f.records[id] = rec
	return &before, &rec, nil
}

func (f *fakeService) Approve(_ context.Context, id string) (*payroll.Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if rec.Status != payroll.StatusPending {
		return nil, payroll.ErrNotPending
	}
	rec.Status = payroll.StatusApproved
	f.records[id] = rec
	return &rec, nil
}

func (f *fakeService) Delete(_ context.Context, id string) (*payroll.Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if rec.Status != payroll.StatusPending {
		return nil, payroll.ErrNotPending
	}
	delete(f.records, id)
	return &rec, nil
}

func (f *fakeService) MarkPaid(_ context.Context, _ auth.UserContext, id string, req payroll.PayRequest) (*payroll.Record, *payroll.Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, nil, pgx.ErrNoRows
	}
	if rec.Status != payroll.StatusApproved {
		return nil, nil, payroll.ErrNotApproved
	}
	if req.BankAccountID != "ba1" {
		return nil, nil, payroll.ErrBankAccountUnknown
	}
	f.paid++
	before := rec
	paidAt := req.PaymentDate
	if paidAt.IsZero() {
		paidAt = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	}
	rec.Status = payroll.StatusPaid
	rec.PaymentDate = &paidAt
	rec.BankAccountID = req.BankAccountID
	rec.BankTransactionID = "tx1"
	f.records[id] = rec
	return &before, &rec, nil
}

func (f *fakeService) GeneratePayslip(ctx context.Context, user auth.UserContext, id string) (string, error) {
	if _, err := f.Get(ctx, user, id); err != nil {
		return "", err
	}
	return "payslips/" + id + ".pdf", nil
}

func (f *fakeService) OpenPayslip(ctx context.Context, user auth.UserContext, id string) (io.ReadCloser, storage.ObjectInfo, error) {
	if _, err := f.Get(ctx, user, id); err != nil {
		return nil, storage.ObjectInfo{}, err
	}
	if f.payslip == nil {
		return nil, storage.ObjectInfo{}, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(f.payslip)), storage.ObjectInfo{
		Key:         "payslips/" + id + ".pdf",
		Size:        int64(len(f.payslip)),
		ContentType: "application/pdf",
	}, nil
}

func (f *fakeService) PayslipLink(ctx context.Context, user auth.UserContext, id string, _ time.Duration) (string, error) {
	if _, err := f.Get(ctx, user, id); err != nil {
		return "", err
	}
	return f.link, nil
}

type perms struct{}

func (perms) HasPermission(_ context.Context, role, permission string) (bool, error) {
	return auth.Allowed(role, permission, auth.DefaultRolePermissions), nil
}

type idemEntry struct {
	hash     string
	response json.RawMessage
}

type memoryIdempotency struct {
	entries map[string]idemEntry
}

func (m *memoryIdempotency) Check(_ context.Context, profileID, endpoint, key, requestHash string) (json.RawMessage, bool, error) {
	entry, ok := m.entries[profileID+"|"+endpoint+"|"+key]
	if !ok {
		return nil, false, nil
	}
	if entry.hash != requestHash {
		return nil, false, middleware.ErrIdempotencyConflict
	}
	return entry.response, true, nil
}

func (m *memoryIdempotency) Save(_ context.Context, profileID, endpoint, key, requestHash string, response json.RawMessage) error {
	m.entries[profileID+"|"+endpoint+"|"+key] = idemEntry{hash: requestHash, response: response}
	return nil
}

var (
	accountant = auth.UserContext{UserID: "a1", RoleName: auth.RoleAccountant}
	manager    = auth.UserContext{UserID: "m1", RoleName: auth.RoleManager}
	employee   = auth.UserContext{UserID: "e1", RoleName: auth.RoleEmployee}
)

func newRouter() (*fakeService, http.Handler) {
	svc := &fakeService{records: map[string]payroll.Record{
		"p1": {ID: "p1", ProfileID: "e1", Status: payroll.StatusPending, GrossPay: 1000, NetPay: 1000},
		"p2": {ID: "p2", ProfileID: "e2", Status: payroll.StatusApproved, GrossPay: 800, NetPay: 800},
	}}
	r := chi.NewRouter()
	idem := &memoryIdempotency{entries: map[string]idemEntry{}}
	NewHandler(svc, perms{}, nil, idem, time.Minute).RegisterRoutes(r, nil)
	return svc, r
}

func serve(h http.Handler, user auth.UserContext, method, path, body string, headers ...string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	req = req.WithContext(middleware.WithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func TestPayrollLifecycle(t *testing.T) {
	svc, h := newRouter()

	rec, env := serve(h, accountant, http.MethodPost, "/payroll/generate", `{"periodStart":"2026-04-01","periodEnd":"2026-04-30"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 2, env["data"].(map[string]any)["created"])

	rec, env = serve(h, accountant, http.MethodPut, "/payroll/p1/deductions", `{"deductions":150}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 850, env["data"].(map[string]any)["netPay"])

	rec, _ = serve(h, accountant, http.MethodPost, "/payroll/p1/approve", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, payroll.StatusApproved, svc.records["p1"].Status)

	rec, _ = serve(h, accountant, http.MethodPut, "/payroll/p1/deductions", `{"deductions":10}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = serve(h, accountant, http.MethodDelete, "/payroll/p1", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, env = serve(h, accountant, http.MethodPost, "/payroll/p1/pay", `{"bankAccountId":"ba1","paymentDate":"2026-05-02"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, payroll.StatusPaid, env["data"].(map[string]any)["status"])
	assert.Equal(t, "tx1", env["data"].(map[string]any)["bankTransactionId"])

	rec, _ = serve(h, accountant, http.MethodPost, "/payroll/p1/pay", `{"bankAccountId":"ba1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPayrollValidation(t *testing.T) {
	_, h := newRouter()

	rec, env := serve(h, accountant, http.MethodPost, "/payroll/generate", `{"periodStart":"2026-04-30","periodEnd":"2026-04-01"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", env["error"].(map[string]any)["code"])

	rec, _ = serve(h, accountant, http.MethodPut, "/payroll/p1/deductions", `{"deductions":-5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = serve(h, accountant, http.MethodPut, "/payroll/p1/deductions", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = serve(h, accountant, http.MethodPost, "/payroll/p2/pay", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = serve(h, accountant, http.MethodPost, "/payroll/p2/pay", `{"bankAccountId":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = serve(h, accountant, http.MethodGet, "/payroll?status=void", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPayrollPermissionsAndOwnership(t *testing.T) {
	_, h := newRouter()

	rec, _ := serve(h, manager, http.MethodPost, "/payroll/generate", `{"periodStart":"2026-04-01","periodEnd":"2026-04-30"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = serve(h, manager, http.MethodPost, "/payroll/p2/pay", `{"bankAccountId":"ba1"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := serve(h, employee, http.MethodGet, "/payroll", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, env["meta"].(map[string]any)["total"])

	rec, _ = serve(h, employee, http.MethodGet, "/payroll/p2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = serve(h, employee, http.MethodGet, "/payroll/p1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPayIdempotency(t *testing.T) {
	svc, h := newRouter()
	body := `{"bankAccountId":"ba1","reference":"APR"}`

	first, firstEnv := serve(h, accountant, http.MethodPost, "/payroll/p2/pay", body, middleware.IdempotencyHeader, "k1")
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())

	again, againEnv := serve(h, accountant, http.MethodPost, "/payroll/p2/pay", body, middleware.IdempotencyHeader, "k1")
	require.Equal(t, http.StatusOK, again.Code)
	assert.Equal(t, "true", again.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, firstEnv["data"], againEnv["data"])
	assert.Equal(t, 1, svc.paid)

	conflict, env := serve(h, accountant, http.MethodPost, "/payroll/p2/pay", `{"bankAccountId":"ba1","reference":"MAY"}`, middleware.IdempotencyHeader, "k1")
	assert.Equal(t, http.StatusConflict, conflict.Code)
	assert.Equal(t, "idempotency_conflict", env["error"].(map[string]any)["code"])

	// Without a key the repeat reaches the service and fails on status.
	rec, _ := serve(h, accountant, http.MethodPost, "/payroll/p2/pay", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 1, svc.paid)
}

func TestPayslipDownloadAndLink(t *testing.T) {
	svc, h := newRouter()

	rec, _ := serve(h, employee, http.MethodGet, "/payroll/p1/payslip", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	svc.payslip = []byte("%PDF-1.4 test")
	rec, _ = serve(h, employee, http.MethodGet, "/payroll/p1/payslip", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "payslip-p1.pdf")
	assert.Equal(t, "%PDF-1.4 test", rec.Body.String())

	rec, env := serve(h, employee, http.MethodGet, "/payroll/p1/payslip/link", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/api/v1/payroll/p1/payslip", env["data"].(map[string]any)["url"])

	svc.link = "https://minio.local/payslips/p1.pdf?sig=x"
	_, env = serve(h, employee, http.MethodGet, "/payroll/p1/payslip/link", "")
	assert.Equal(t, svc.link, env["data"].(map[string]any)["url"])
	assert.EqualValues(t, 60, env["data"].(map[string]any)["expiresIn"])

	rec, _ = serve(h, employee, http.MethodPost, "/payroll/p1/payslip", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = serve(h, accountant, http.MethodPost, "/payroll/p1/payslip", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
