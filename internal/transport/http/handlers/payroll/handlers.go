package payrollhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"workforce/internal/domain/audit"
	"workforce/internal/domain/auth"
	"workforce/internal/domain/payroll"
	"workforce/internal/platform/logging"
	"workforce/internal/platform/storage"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

const payEndpoint = "payroll.pay"

type Service interface {
	List(ctx context.Context, user auth.UserContext, filter payroll.Filter, limit, offset int) ([]payroll.Record, int, error)
	Get(ctx context.Context, user auth.UserContext, id string) (*payroll.Record, error)
	Generate(ctx context.Context, req payroll.GenerateRequest) (payroll.GenerateResult, error)
	UpdateDeductions(ctx context.Context, id string, deductions float64) (*payroll.Record, *payroll.Record, error)
	Approve(ctx context.Context, id string) (*payroll.Record, error)
	Delete(ctx context.Context, id string) (*payroll.Record, error)
	MarkPaid(ctx context.Context, user auth.UserContext, id string, req payroll.PayRequest) (*payroll.Record, *payroll.Record, error)
	GeneratePayslip(ctx context.Context, user auth.UserContext, id string) (string, error)
	OpenPayslip(ctx context.Context, user auth.UserContext, id string) (io.ReadCloser, storage.ObjectInfo, error)
	PayslipLink(ctx context.Context, user auth.UserContext, id string, ttl time.Duration) (string, error)
}

type Handler struct {
	Service     Service
	Perms       middleware.PermissionStore
	Audit       audit.Recorder
	Idempotency middleware.IdempotencyChecker
	LinkTTL     time.Duration
}

func NewHandler(service Service, perms middleware.PermissionStore, recorder audit.Recorder, idem middleware.IdempotencyChecker, linkTTL time.Duration) *Handler {
	if linkTTL <= 0 {
		linkTTL = 15 * time.Minute
	}
	return &Handler{Service: service, Perms: perms, Audit: recorder, Idempotency: idem, LinkTTL: linkTTL}
}

type generateRequest struct {
	PeriodStart string `json:"periodStart"`
	PeriodEnd   string `json:"periodEnd"`
	ProfileID   string `json:"profileId"`
}

type deductionsRequest struct {
	Deductions *float64 `json:"deductions"`
}

type payRequest struct {
	BankAccountID string `json:"bankAccountId"`
	PaymentDate   string `json:"paymentDate"`
	Reference     string `json:"reference"`
}

var payrollErrors = []api.Mapping{
	api.BadRequest(payroll.ErrPeriodRequired),
	api.BadRequest(payroll.ErrPeriodOrder),
	api.BadRequest(payroll.ErrNegativeDeductions),
	api.BadRequest(payroll.ErrBankAccountNeeded),
	api.BadRequest(payroll.ErrBankAccountUnknown),
	api.Conflict(payroll.ErrNotPending),
	api.Conflict(payroll.ErrNotApproved),
	api.Conflict(payroll.ErrNonPositiveNet),
	{Err: payroll.ErrNotOwner, Status: http.StatusNotFound, Code: "not_found"},
	{Err: storage.ErrNotFound, Status: http.StatusNotFound, Code: "not_found"},
}

// RegisterRoutes mounts payroll endpoints. payLimiter, when set, wraps only
// the pay route.
func (h *Handler) RegisterRoutes(r chi.Router, payLimiter func(http.Handler) http.Handler) {
	read := middleware.RequirePermission(auth.PermPayrollRead, h.Perms)
	write := middleware.RequirePermission(auth.PermPayrollWrite, h.Perms)
	pay := middleware.RequirePermission(auth.PermPayrollPay, h.Perms)
	if payLimiter == nil {
		payLimiter = func(next http.Handler) http.Handler { return next }
	}
	r.Route("/payroll", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(write).Post("/generate", h.handleGenerate)
		r.Route("/{payrollID}", func(r chi.Router) {
			r.With(read).Get("/", h.handleGet)
			r.With(write).Delete("/", h.handleDelete)
			r.With(write).Put("/deductions", h.handleDeductions)
			r.With(write).Post("/approve", h.handleApprove)
			r.With(payLimiter, pay).Post("/pay", h.handlePay)
			r.With(read).Get("/payslip", h.handlePayslip)
			r.With(read).Get("/payslip/link", h.handlePayslipLink)
			r.With(write).Post("/payslip", h.handleRegeneratePayslip)
		})
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	q := r.URL.Query()
	v := shared.NewValidator()
	v.Enum("status", q.Get("status"), payroll.Statuses, "must be pending, approved or paid")
	from := v.OptionalDate("from", q.Get("from"))
	to := v.OptionalDate("to", q.Get("to"))
	v.DateOrder("from", from, "to", to)
	if v.Reject(w, reqID) {
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	filter := payroll.Filter{ProfileID: q.Get("profileId"), Status: q.Get("status"), From: from, To: to}
	items, total, err := h.Service.List(r.Context(), user, filter, page.Limit, page.Offset)
	if err != nil {
		api.FailErr(w, reqID, err)
		return
	}
	api.List(w, items, page.Meta(total), reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	rec, err := h.Service.Get(r.Context(), user, chi.URLParam(r, "payrollID"))
	if err != nil {
		api.FailErr(w, reqID, err, payrollErrors...)
		return
	}
	api.Success(w, rec, reqID)
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	var payload generateRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	v := shared.NewValidator()
	start, _ := v.Date("periodStart", payload.PeriodStart)
	end, _ := v.Date("periodEnd", payload.PeriodEnd)
	v.DateOrder("periodStart", start, "periodEnd", end)
	if v.Reject(w, reqID) {
		return
	}
	result, err := h.Service.Generate(r.Context(), payroll.GenerateRequest{PeriodStart: start, PeriodEnd: end, ProfileID: payload.ProfileID})
	if err != nil {
		api.FailErr(w, reqID, err, payrollErrors...)
		return
	}
	shared.Audit(r, h.Audit, user.UserID, "payroll.generate", "payroll_period", result.PeriodStart+"/"+result.PeriodEnd, nil, result)
	api.Success(w, result, reqID)
}

func (h *Handler) handleDeductions(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	var payload deductionsRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	v := shared.NewValidator()
	if payload.Deductions == nil {
		v.Add("deductions", "is required")
	} else {
		v.NonNegative("deductions", *payload.Deductions)
	}
	if v.Reject(w, reqID) {
		return
	}
	id := chi.URLParam(r, "payrollID")
	before, after, err := h.Service.UpdateDeductions(r.Context(), id, *payload.Deductions)
	if err != nil {
		api.FailErr(w, reqID, err, payrollErrors...)
		return
	}
	shared.Audit(r, h.Audit, user.UserID, "payroll.deductions", "payroll", id, before, after)
	api.Success(w, after, reqID)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	id := chi.URLParam(r, "payrollID")
	rec, err := h.Service.Approve(r.Context(), id)
	if err != nil {
		api.FailErr(w, reqID, err, payrollErrors...)
		return
	}
	shared.Audit(r, h.Audit, user.UserID, "payroll.approve", "payroll", id,
		map[string]string{"status": payroll.StatusPending}, map[string]string{"status": rec.Status})
	api.Success(w, rec, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	id := chi.URLParam(r, "payrollID")
	before, err := h.Service.Delete(r.Context(), id)
	if err != nil {
		api.FailErr(w, reqID, err, payrollErrors...)
		return
	}
	shared.Audit(r, h.Audit, user.UserID, "payroll.delete", "payroll", id, before, nil)
	api.Success(w, map[string]string{"id": id, "status": "deleted"}, reqID)
}

// handlePay settles an approved record. Repeating a request with the same
// Idempotency-Key and body replays the first response.
func (h *Handler) handlePay(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	log := logging.FromContext(r.Context())
	id := chi.URLParam(r, "payrollID")

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", reqID)
			return
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))

	key, err := middleware.IdempotencyKey(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_idempotency_key", err.Error(), reqID)
		return
	}
	requestHash := middleware.RequestHash([]byte(id), raw)
	if key != "" && h.Idempotency != nil {
		stored, found, err := h.Idempotency.Check(r.Context(), user.UserID, payEndpoint, key, requestHash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", err.Error(), reqID)
			return
		}
		if err != nil {
			log.Warn("idempotency check failed", "payrollId", id, "err", err)
		}
		if found {
			middleware.MarkReplayed(w)
			api.Success(w, stored, reqID)
			return
		}
	}

	var payload payRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	v := shared.NewValidator()
	v.Required("bankAccountId", payload.BankAccountID, "is required")
	paymentDate := v.OptionalDate("paymentDate", payload.PaymentDate)
	if v.Reject(w, reqID) {
		return
	}

	before, after, err := h.Service.MarkPaid(r.Context(), user, id, payroll.PayRequest{
		BankAccountID: payload.BankAccountID,
		PaymentDate:   paymentDate,
		Reference:     payload.Reference,
	})
	if err != nil {
		api.FailErr(w, reqID, err, payrollErrors...)
		return
	}
	shared.Audit(r, h.Audit, user.UserID, "payroll.pay", "payroll", id, before, after)

	if key != "" && h.Idempotency != nil {
		encoded, err := json.Marshal(after)
		if err != nil {
			log.Warn("idempotency response marshal failed", "payrollId", id, "err", err)
		} else if err := h.Idempotency.Save(r.Context(), user.UserID, payEndpoint, key, requestHash, encoded); err != nil {
			log.Warn("idempotency save failed", "payrollId", id, "err", err)
		}
	}
	api.Success(w, after, reqID)
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	id := chi.URLParam(r, "payrollID")
	body, info, err := h.Service.OpenPayslip(r.Context(), user, id)
	if err != nil {
		api.FailErr(w, reqID, err, payrollErrors...)
		return
	}
	defer body.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=payslip-%s.pdf", id))
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	if _, err := io.Copy(w, body); err != nil {
		logging.FromContext(r.Context()).Warn("payslip stream failed", "payrollId", id, "err", err)
	}
}

func (h *Handler) handlePayslipLink(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	id := chi.URLParam(r, "payrollID")
	url, err := h.Service.PayslipLink(r.Context(), user, id, h.LinkTTL)
	if err != nil {
		api.FailErr(w, reqID, err, payrollErrors...)
		return
	}
	resp := map[string]any{"url": url, "expiresIn": int(h.LinkTTL.Seconds())}
	if url == "" {
		resp["url"] = "/api/v1/payroll/" + id + "/payslip"
		resp["expiresIn"] = 0
	}
	api.Success(w, resp, reqID)
}

func (h *Handler) handleRegeneratePayslip(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	id := chi.URLParam(r, "payrollID")
	key, err := h.Service.GeneratePayslip(r.Context(), user, id)
	if err != nil {
		api.FailErr(w, reqID, err, payrollErrors...)
		return
	}
	shared.Audit(r, h.Audit, user.UserID, "payroll.payslip", "payroll", id, nil, map[string]string{"key": key})
	api.Success(w, map[string]string{"id": id, "status": "generated"}, reqID)
}
