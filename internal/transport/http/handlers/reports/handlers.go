package reportshandler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"workforce/internal/domain/auth"
	"workforce/internal/domain/banking"
	"workforce/internal/domain/reports"
	"workforce/internal/domain/timecalc"
	"workforce/internal/domain/workhours"
	"workforce/internal/platform/jobs"
	"workforce/internal/platform/logging"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

type Service interface {
	Hours(ctx context.Context, filter reports.HoursFilter) (reports.HoursReport, error)
	ExportHoursCSV(ctx context.Context, w io.Writer, filter reports.HoursFilter) error
	Payroll(ctx context.Context, from, to time.Time) (reports.PayrollSummary, error)
	Bank(ctx context.Context) (banking.Summary, error)
	AdminDashboard(ctx context.Context) (reports.AdminDashboard, error)
	EmployeeDashboard(ctx context.Context, user auth.UserContext) (reports.EmployeeDashboard, error)
	JobRuns(ctx context.Context, jobType string, limit, offset int) ([]jobs.Run, int, error)
	JobRun(ctx context.Context, id string) (*jobs.Run, error)
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
}

func NewHandler(service Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

var reportErrors = []api.Mapping{
	api.BadRequest(reports.ErrInvalidGroupBy),
	api.BadRequest(reports.ErrRangeOrder),
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermReportsRead, h.Perms)
	r.Route("/reports", func(r chi.Router) {
		r.With(read).Get("/hours", h.handleHours)
		r.With(read).Get("/hours/export", h.handleHoursExport)
		r.With(read).Get("/payroll", h.handlePayroll)
		r.With(middleware.RequireAnyPermission(h.Perms, auth.PermBankingRead, auth.PermReportsRead)).Get("/bank", h.handleBank)
		r.With(read).Get("/dashboard/admin", h.handleAdminDashboard)
		// Employees see only their own figures, so no permission beyond login.
		r.Get("/dashboard/employee", h.handleEmployeeDashboard)
		r.With(read).Get("/jobs", h.handleJobRuns)
		r.With(read).Get("/jobs/{runID}", h.handleJobRun)
	})
}

func hoursFilter(w http.ResponseWriter, r *http.Request, reqID string) (reports.HoursFilter, bool) {
	q := r.URL.Query()
	v := shared.NewValidator()
	from := v.OptionalDate("from", q.Get("from"))
	to := v.OptionalDate("to", q.Get("to"))
	v.DateOrder("from", from, "to", to)
	v.Enum("status", q.Get("status"), workhours.Statuses, "must be pending, approved or rejected")
	groupBy := q.Get("groupBy")
	if groupBy != "" {
		if _, ok := timecalc.KeyFunc(groupBy); !ok {
			v.Add("groupBy", reports.ErrInvalidGroupBy.Error())
		}
	}
	if v.Reject(w, reqID) {
		return reports.HoursFilter{}, false
	}
	return reports.HoursFilter{
		From:      from,
		To:        to,
		Status:    q.Get("status"),
		ProfileID: q.Get("profileId"),
		ProjectID: q.Get("projectId"),
		ClientID:  q.Get("clientId"),
		GroupBy:   groupBy,
	}, true
}

func (h *Handler) handleHours(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	filter, ok := hoursFilter(w, r, reqID)
	if !ok {
		return
	}
	report, err := h.Service.Hours(r.Context(), filter)
	if err != nil {
		api.FailErr(w, reqID, err, reportErrors...)
		return
	}
	api.Success(w, report, reqID)
}

// handleHoursExport buffers the CSV so a failed query still yields a JSON error.
func (h *Handler) handleHoursExport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	filter, ok := hoursFilter(w, r, reqID)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.Service.ExportHoursCSV(r.Context(), &buf, filter); err != nil {
		api.FailErr(w, reqID, err, reportErrors...)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=hours-report.csv")
	if _, err := buf.WriteTo(w); err != nil {
		logging.FromContext(r.Context()).Warn("hours export write failed", "err", err)
	}
}

func (h *Handler) handlePayroll(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()
	v := shared.NewValidator()
	from := v.OptionalDate("from", q.Get("from"))
	to := v.OptionalDate("to", q.Get("to"))
	v.DateOrder("from", from, "to", to)
	if v.Reject(w, reqID) {
		return
	}
	summary, err := h.Service.Payroll(r.Context(), from, to)
	if err != nil {
		api.FailErr(w, reqID, err, reportErrors...)
		return
	}
	api.Success(w, summary, reqID)
}

func (h *Handler) handleBank(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	summary, err := h.Service.Bank(r.Context())
	if err != nil {
		api.FailErr(w, reqID, err)
		return
	}
	api.Success(w, summary, reqID)
}

func (h *Handler) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	dash, err := h.Service.AdminDashboard(r.Context())
	if err != nil {
		api.FailErr(w, reqID, err)
		return
	}
	api.Success(w, dash, reqID)
}

func (h *Handler) handleEmployeeDashboard(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	dash, err := h.Service.EmployeeDashboard(r.Context(), user)
	if err != nil {
		api.FailErr(w, reqID, err)
		return
	}
	api.Success(w, dash, reqID)
}

func (h *Handler) handleJobRuns(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 50, 200)
	runs, total, err := h.Service.JobRuns(r.Context(), r.URL.Query().Get("type"), page.Limit, page.Offset)
	if err != nil {
		api.FailErr(w, reqID, err)
		return
	}
	api.List(w, runs, page.Meta(total), reqID)
}

func (h *Handler) handleJobRun(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	run, err := h.Service.JobRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		api.FailErr(w, reqID, err)
		return
	}
	api.Success(w, run, reqID)
}
