package workhourshandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"workforce/internal/domain/audit"
	"workforce/internal/domain/auth"
	"workforce/internal/domain/timecalc"
	"workforce/internal/domain/workhours"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

type Service interface {
	List(ctx context.Context, user auth.UserContext, filter workhours.Filter, limit, offset int) ([]workhours.Entry, int, error)
	Get(ctx context.Context, user auth.UserContext, id string) (*workhours.Entry, error)
	Create(ctx context.Context, user auth.UserContext, in workhours.Input) (*workhours.Entry, error)
	Update(ctx context.Context, user auth.UserContext, id string, in workhours.Input) (*workhours.Entry, *workhours.Entry, error)
	Delete(ctx context.Context, user auth.UserContext, id string) (*workhours.Entry, error)
	Approve(ctx context.Context, user auth.UserContext, id string) (*workhours.Entry, error)
	Reject(ctx context.Context, user auth.UserContext, id, reason string) (*workhours.Entry, error)
	BulkApprove(ctx context.Context, user auth.UserContext, ids []string) (workhours.BulkResult, error)
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
	Audit   audit.Recorder
}

func NewHandler(service Service, perms middleware.PermissionStore, recorder audit.Recorder) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: recorder}
}

type entryRequest struct {
	ProfileID      string   `json:"profileId"`
	ClientID       string   `json:"clientId"`
	ProjectID      string   `json:"projectId"`
	RosterID       string   `json:"rosterId"`
	WorkDate       string   `json:"workDate"`
	ScheduledStart string   `json:"scheduledStart"`
	ScheduledEnd   string   `json:"scheduledEnd"`
	ActualStart    string   `json:"actualStart"`
	ActualEnd      string   `json:"actualEnd"`
	HourlyRate     *float64 `json:"hourlyRate"`
	Category       string   `json:"category"`
	Notes          string   `json:"notes"`
}

func (p entryRequest) input(w http.ResponseWriter, reqID string) (workhours.Input, bool) {
	v := shared.NewValidator()
	v.Required("projectId", p.ProjectID, "is required")
	date, _ := v.Date("workDate", p.WorkDate)
	v.Enum("category", p.Category, workhours.Categories, "is not a known category")
	if p.HourlyRate != nil {
		v.NonNegative("hourlyRate", *p.HourlyRate)
	}
	if (p.ScheduledStart == "" || p.ScheduledEnd == "") && (p.ActualStart == "" || p.ActualEnd == "") {
		v.Add("scheduledStart", "scheduled or actual start and end times are required")
	}
	if v.Reject(w, reqID) {
		return workhours.Input{}, false
	}
	return workhours.Input{
		ProfileID:      p.ProfileID,
		ClientID:       p.ClientID,
		ProjectID:      p.ProjectID,
		RosterID:       p.RosterID,
		WorkDate:       date,
		ScheduledStart: p.ScheduledStart,
		ScheduledEnd:   p.ScheduledEnd,
		ActualStart:    p.ActualStart,
		ActualEnd:      p.ActualEnd,
		HourlyRate:     p.HourlyRate,
		Category:       p.Category,
		Notes:          p.Notes,
	}, true
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

type bulkRequest struct {
	IDs []string `json:"ids"`
}

var entryErrors = []api.Mapping{
	api.Conflict(workhours.ErrNotPending),
	{Err: workhours.ErrNotOwner, Status: http.StatusNotFound, Code: "not_found"},
	api.BadRequest(workhours.ErrInvalidCategory),
	api.BadRequest(workhours.ErrProjectRequired),
	api.BadRequest(workhours.ErrDateRequired),
	api.BadRequest(workhours.ErrReasonRequired),
	api.BadRequest(workhours.ErrNegativeRate),
	api.BadRequest(workhours.ErrNoTimes),
	api.BadRequest(workhours.ErrTooManyEntries),
	api.BadRequest(workhours.ErrProjectNotFound),
	api.BadRequest(workhours.ErrClientMismatch),
	api.Forbidden(workhours.ErrRateNotAllowed),
	api.BadRequest(timecalc.ErrInvalidClock),
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/working-hours", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermHoursRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermHoursWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermHoursApprove, h.Perms)).Post("/bulk-approve", h.handleBulkApprove)
		r.Route("/{entryID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermHoursRead, h.Perms)).Get("/", h.handleGet)
			r.With(middleware.RequirePermission(auth.PermHoursWrite, h.Perms)).Put("/", h.handleUpdate)
			r.With(middleware.RequirePermission(auth.PermHoursWrite, h.Perms)).Delete("/", h.handleDelete)
			r.With(middleware.RequirePermission(auth.PermHoursApprove, h.Perms)).Post("/approve", h.handleApprove)
			r.With(middleware.RequirePermission(auth.PermHoursApprove, h.Perms)).Post("/reject", h.handleReject)
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
	v.Enum("status", q.Get("status"), workhours.Statuses, "is not a known status")
	v.Enum("category", q.Get("category"), workhours.Categories, "is not a known category")
	from := v.OptionalDate("from", q.Get("from"))
	to := v.OptionalDate("to", q.Get("to"))
	v.DateOrder("from", from, "to", to)
	if v.Reject(w, reqID) {
		return
	}

	page := shared.ParsePagination(r, 100, 500)
	filter := workhours.Filter{
		ProfileID: q.Get("profileId"),
		ProjectID: q.Get("projectId"),
		ClientID:  q.Get("clientId"),
		RosterID:  q.Get("rosterId"),
		Status:    q.Get("status"),
		Category:  q.Get("category"),
		From:      from,
		To:        to,
	}
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
	e, err := h.Service.Get(r.Context(), user, chi.URLParam(r, "entryID"))
	if err != nil {
		api.FailErr(w, reqID, err, entryErrors...)
		return
	}
	api.Success(w, e, reqID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	var payload entryRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	in, ok := payload.input(w, reqID)
	if !ok {
		return
	}
	e, err := h.Service.Create(r.Context(), user, in)
	if err != nil {
		api.FailErr(w, reqID, err, entryErrors...)
		return
	}
	shared.Audit(r, h.Audit, user.UserID, "hours.create", "working_hours", e.ID, nil, e)
	api.Created(w, e, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	var payload entryRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	in, ok := payload.input(w, reqID)
	if !ok {
		return
	}
	id := chi.URLParam(r, "entryID")
	before, after, err := h.Service.Update(r.Context(), user, id, in)
	if err != nil {
		api.FailErr(w, reqID, err, entryErrors...)
		return
	}
	shared.Audit(r, h.Audit, user.UserID, "hours.update", "working_hours", id, before, after)
	api.Success(w, after, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	id := chi.URLParam(r, "entryID")
	before, err := h.Service.Delete(r.Context(), user, id)
	if err != nil {
		api.FailErr(w, reqID, err, entryErrors...)
		return
	}
	shared.Audit(r, h.Audit, user.UserID, "hours.delete", "working_hours", id, before, nil)
	api.Success(w, map[string]string{"id": id, "status": "deleted"}, reqID)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	id := chi.URLParam(r, "entryID")
	e, err := h.Service.Approve(r.Context(), user, id)
	if err != nil {
		api.FailErr(w, reqID, err, entryErrors...)
		return
	}
	shared.Audit(r, h.Audit, user.UserID, "hours.approve", "working_hours", id,
		map[string]string{"status": workhours.StatusPending}, map[string]string{"status": e.Status})
	api.Success(w, e, reqID)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	var payload rejectRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	v := shared.NewValidator()
	v.Required("reason", payload.Reason, "is required")
	if v.Reject(w, reqID) {
		return
	}
	id := chi.URLParam(r, "entryID")
	e, err := h.Service.Reject(r.Context(), user, id, payload.Reason)
	if err != nil {
		api.FailErr(w, reqID, err, entryErrors...)
		return
	}
	shared.Audit(r, h.Audit, user.UserID, "hours.reject", "working_hours", id,
		map[string]string{"status": workhours.StatusPending},
		map[string]string{"status": e.Status, "reason": e.RejectionReason})
	api.Success(w, e, reqID)
}

func (h *Handler) handleBulkApprove(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	var payload bulkRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	if len(payload.IDs) == 0 {
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "ids", Reason: "must contain at least one id"}})
		return
	}
	result, err := h.Service.BulkApprove(r.Context(), user, payload.IDs)
	if err != nil {
		api.FailErr(w, reqID, err, entryErrors...)
		return
	}
	for _, id := range result.Approved {
		shared.Audit(r, h.Audit, user.UserID, "hours.approve", "working_hours", id,
			map[string]string{"status": workhours.StatusPending}, map[string]string{"status": workhours.StatusApproved})
	}
	api.Success(w, result, reqID)
}
