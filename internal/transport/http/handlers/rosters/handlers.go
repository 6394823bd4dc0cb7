package rostershandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"workforce/internal/domain/audit"
	"workforce/internal/domain/auth"
	"workforce/internal/domain/rosters"
	"workforce/internal/domain/timecalc"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

type Service interface {
	List(ctx context.Context, user auth.UserContext, filter rosters.Filter, limit, offset int) ([]rosters.Roster, int, error)
	Get(ctx context.Context, user auth.UserContext, id string) (*rosters.Roster, error)
	Create(ctx context.Context, user auth.UserContext, r rosters.Roster) (*rosters.Roster, error)
	Update(ctx context.Context, id string, r rosters.Roster) (*rosters.Roster, *rosters.Roster, error)
	Delete(ctx context.Context, id string) (*rosters.Roster, error)
	Transition(ctx context.Context, id, status string) (*rosters.Roster, error)
	Publish(ctx context.Context, id string) (*rosters.Roster, error)
	Assign(ctx context.Context, id string, profileIDs []string) (rosters.AssignResult, error)
	Unassign(ctx context.Context, id, profileID string) error
	Respond(ctx context.Context, user auth.UserContext, id, profileID, status string) error
	GenerateWorkingHours(ctx context.Context, id string) (rosters.GenerateResult, error)
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
	Audit   audit.Recorder
}

func NewHandler(service Service, perms middleware.PermissionStore, recorder audit.Recorder) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: recorder}
}

type rosterRequest struct {
	Name      string `json:"name"`
	ProjectID string `json:"projectId"`
	ClientID  string `json:"clientId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Notes     string `json:"notes"`
}

func (p rosterRequest) roster(w http.ResponseWriter, reqID string) (rosters.Roster, bool) {
	v := shared.NewValidator()
	v.Required("name", p.Name, "is required")
	v.Required("projectId", p.ProjectID, "is required")
	start, _ := v.Date("startDate", p.StartDate)
	end, _ := v.Date("endDate", p.EndDate)
	v.DateOrder("startDate", start, "endDate", end)
	v.Required("startTime", p.StartTime, "is required")
	v.Required("endTime", p.EndTime, "is required")
	v.Clock("startTime", p.StartTime)
	v.Clock("endTime", p.EndTime)
	if v.Reject(w, reqID) {
		return rosters.Roster{}, false
	}
	return rosters.Roster{
		Name:      p.Name,
		ProjectID: p.ProjectID,
		ClientID:  p.ClientID,
		StartDate: start,
		EndDate:   end,
		StartTime: p.StartTime,
		EndTime:   p.EndTime,
		Notes:     p.Notes,
	}, true
}

type statusRequest struct {
	Status string `json:"status"`
}

type assignRequest struct {
	ProfileIDs []string `json:"profileIds"`
}

var rosterErrors = []api.Mapping{
	api.BadRequest(rosters.ErrNameRequired),
	api.BadRequest(rosters.ErrProjectRequired),
	api.BadRequest(rosters.ErrProjectNotFound),
	api.BadRequest(rosters.ErrDatesRequired),
	api.BadRequest(rosters.ErrDateOrder),
	api.BadRequest(rosters.ErrRangeTooLong),
	api.BadRequest(rosters.ErrTimesRequired),
	api.BadRequest(rosters.ErrInvalidAssignmentStatus),
	api.BadRequest(rosters.ErrNoProfiles),
	api.BadRequest(timecalc.ErrInvalidClock),
	api.Conflict(rosters.ErrInvalidStatus),
	api.Conflict(rosters.ErrNotDraft),
	api.Conflict(rosters.ErrClosed),
	api.NotFound(rosters.ErrNotAssigned),
	api.Forbidden(rosters.ErrNotAssignee),
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermRostersRead, h.Perms)
	write := middleware.RequirePermission(auth.PermRostersWrite, h.Perms)
	r.Route("/rosters", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(write).Post("/", h.handleCreate)
		r.Route("/{rosterID}", func(r chi.Router) {
			r.With(read).Get("/", h.handleGet)
			r.With(write).Put("/", h.handleUpdate)
			r.With(write).Delete("/", h.handleDelete)
			r.With(write).Post("/publish", h.handlePublish)
			r.With(write).Post("/status", h.handleStatus)
			r.With(write).Post("/assignments", h.handleAssign)
			r.With(write).Delete("/assignments/{profileID}", h.handleUnassign)
			r.With(read).Put("/assignments/{profileID}", h.handleRespond)
			r.With(write).Post("/generate-hours", h.handleGenerate)
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
	v.Enum("status", q.Get("status"), rosters.Statuses, "is not a known roster status")
	from := v.OptionalDate("from", q.Get("from"))
	to := v.OptionalDate("to", q.Get("to"))
	v.DateOrder("from", from, "to", to)
	if v.Reject(w, reqID) {
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	filter := rosters.Filter{
		ProjectID: q.Get("projectId"),
		Status:    q.Get("status"),
		ProfileID: q.Get("profileId"),
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
	ro, err := h.Service.Get(r.Context(), user, chi.URLParam(r, "rosterID"))
	if err != nil {
		api.FailErr(w, reqID, err, rosterErrors...)
		return
	}
	api.Success(w, ro, reqID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	var payload rosterRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	in, ok := payload.roster(w, reqID)
	if !ok {
		return
	}
	created, err := h.Service.Create(r.Context(), user, in)
	if err != nil {
		api.FailErr(w, reqID, err, rosterErrors...)
		return
	}
	shared.Audit(r, h.Audit, user.UserID, "rosters.create", "roster", created.ID, nil, created)
	api.Created(w, created, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	var payload rosterRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	in, ok := payload.roster(w, reqID)
	if !ok {
		return
	}
	id := chi.URLParam(r, "rosterID")
	before, after, err := h.Service.Update(r.Context(), id, in)
	if err != nil {
		api.FailErr(w, reqID, err, rosterErrors...)
		return
	}
	shared.Audit(r, h.Audit, user.UserID, "rosters.update", "roster", id, before, after)
	api.Success(w, after, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	id := chi.URLParam(r, "rosterID")
	before, err := h.Service.Delete(r.Context(), id)
	if err != nil {
		api.FailErr(w, reqID, err, rosterErrors...)
		return
	}
	shared.Audit(r, h.Audit, user.UserID, "rosters.delete", "roster", id, before, nil)
	api.Success(w, map[string]string{"id": id, "status": "deleted"}, reqID)
}

func (h *Handler) handlePublish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, rosters.StatusPublished)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload statusRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	v := shared.NewValidator()
	v.Required("status", payload.Status, "is required")
	v.Enum("status", payload.Status, rosters.Statuses, "is not a known roster status")
	if v.Reject(w, reqID) {
		return
	}
	h.transition(w, r, payload.Status)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, status string) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	id := chi.URLParam(r, "rosterID")
	var (
		before string
		ro     *rosters.Roster
		err    error
	)
	if current, getErr := h.Service.Get(r.Context(), user, id); getErr == nil {
		before = current.Status
	}
	if status == rosters.StatusPublished {
		ro, err = h.Service.Publish(r.Context(), id)
	} else {
		ro, err = h.Service.Transition(r.Context(), id, status)
	}
	if err != nil {
		api.FailErr(w, reqID, err, rosterErrors...)
		return
	}
	shared.Audit(r, h.Audit, user.UserID, "rosters.status", "roster", id,
		map[string]string{"status": before}, map[string]string{"status": ro.Status})
	api.Success(w, ro, reqID)
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	var payload assignRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	id := chi.URLParam(r, "rosterID")
	result, err := h.Service.Assign(r.Context(), id, payload.ProfileIDs)
	if err != nil {
		api.FailErr(w, reqID, err, rosterErrors...)
		return
	}
	if len(result.Assigned) > 0 {
		shared.Audit(r, h.Audit, user.UserID, "rosters.assign", "roster", id, nil, result)
	}
	api.Success(w, result, reqID)
}

func (h *Handler) handleUnassign(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	id := chi.URLParam(r, "rosterID")
	profileID := chi.URLParam(r, "profileID")
	if err := h.Service.Unassign(r.Context(), id, profileID); err != nil {
		api.FailErr(w, reqID, err, rosterErrors...)
		return
	}
	shared.Audit(r, h.Audit, user.UserID, "rosters.unassign", "roster", id, map[string]string{"profileId": profileID}, nil)
	api.Success(w, map[string]string{"rosterId": id, "profileId": profileID, "status": "unassigned"}, reqID)
}

func (h *Handler) handleRespond(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	var payload statusRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	v := shared.NewValidator()
	v.Required("status", payload.Status, "is required")
	v.Enum("status", payload.Status, rosters.AssignmentStatuses, "must be assigned, confirmed or declined")
	if v.Reject(w, reqID) {
		return
	}
	id := chi.URLParam(r, "rosterID")
	profileID := chi.URLParam(r, "profileID")
	if err := h.Service.Respond(r.Context(), user, id, profileID, payload.Status); err != nil {
		api.FailErr(w, reqID, err, rosterErrors...)
		return
	}
	shared.Audit(r, h.Audit, user.UserID, "rosters.respond", "roster", id, nil,
		map[string]string{"profileId": profileID, "status": payload.Status})
	api.Success(w, map[string]string{"rosterId": id, "profileId": profileID, "status": payload.Status}, reqID)
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	id := chi.URLParam(r, "rosterID")
	result, err := h.Service.GenerateWorkingHours(r.Context(), id)
	if err != nil {
		api.FailErr(w, reqID, err, rosterErrors...)
		return
	}
	shared.Audit(r, h.Audit, user.UserID, "rosters.generate_hours", "roster", id, nil, result)
	api.Success(w, result, reqID)
}
