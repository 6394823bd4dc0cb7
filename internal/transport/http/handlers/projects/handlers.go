package projectshandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"workforce/internal/domain/audit"
	"workforce/internal/domain/auth"
	"workforce/internal/domain/projects"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

type Service interface {
	List(ctx context.Context, filter projects.Filter, limit, offset int) ([]projects.Project, int, error)
	Get(ctx context.Context, id string) (*projects.Project, error)
	Create(ctx context.Context, p projects.Project) (string, error)
	Update(ctx context.Context, id string, p projects.Project) (*projects.Project, error)
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
	Audit   audit.Recorder
}

func NewHandler(service Service, perms middleware.PermissionStore, recorder audit.Recorder) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: recorder}
}

type projectRequest struct {
	ClientID    string  `json:"clientId"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	StartDate   string  `json:"startDate"`
	EndDate     string  `json:"endDate"`
	Budget      float64 `json:"budget"`
	Status      string  `json:"status"`
}

// project validates the payload and converts it, writing the 400 itself.
func (p projectRequest) project(w http.ResponseWriter, reqID string) (projects.Project, bool) {
	v := shared.NewValidator()
	v.Required("name", p.Name, "is required")
	v.Required("clientId", p.ClientID, "is required")
	start, _ := v.Date("startDate", p.StartDate)
	end := v.OptionalDate("endDate", p.EndDate)
	v.DateOrder("startDate", start, "endDate", end)
	v.NonNegative("budget", p.Budget)
	v.Enum("status", p.Status, projects.Statuses, "is not a known project status")
	if v.Reject(w, reqID) {
		return projects.Project{}, false
	}
	out := projects.Project{
		ClientID:    p.ClientID,
		Name:        p.Name,
		Description: p.Description,
		StartDate:   start,
		Budget:      p.Budget,
		Status:      p.Status,
	}
	if !end.IsZero() {
		out.EndDate = &end
	}
	return out, true
}

var projectErrors = []api.Mapping{
	api.BadRequest(projects.ErrNameRequired),
	api.BadRequest(projects.ErrClientRequired),
	api.BadRequest(projects.ErrStartRequired),
	api.BadRequest(projects.ErrDateOrder),
	api.BadRequest(projects.ErrInvalidStatus),
	api.BadRequest(projects.ErrNegativeBudget),
	api.Conflict(projects.ErrHasHours),
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/projects", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermProjectsRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermProjectsWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermProjectsRead, h.Perms)).Get("/{projectID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermProjectsWrite, h.Perms)).Put("/{projectID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermProjectsWrite, h.Perms)).Delete("/{projectID}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()
	v := shared.NewValidator()
	v.Enum("status", q.Get("status"), projects.Statuses, "is not a known project status")
	if v.Reject(w, reqID) {
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	filter := projects.Filter{ClientID: q.Get("clientId"), Status: q.Get("status")}
	items, total, err := h.Service.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		api.FailErr(w, reqID, err)
		return
	}
	api.List(w, items, page.Meta(total), reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	p, err := h.Service.Get(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		api.FailErr(w, reqID, err)
		return
	}
	api.Success(w, p, reqID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	var payload projectRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	p, ok := payload.project(w, reqID)
	if !ok {
		return
	}
	id, err := h.Service.Create(r.Context(), p)
	if err != nil {
		api.FailErr(w, reqID, err, projectErrors...)
		return
	}
	p.ID = id
	shared.Audit(r, h.Audit, user.UserID, "projects.create", "project", id, nil, p)
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	var payload projectRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	p, ok := payload.project(w, reqID)
	if !ok {
		return
	}
	id := chi.URLParam(r, "projectID")
	before, err := h.Service.Update(r.Context(), id, p)
	if err != nil {
		api.FailErr(w, reqID, err, projectErrors...)
		return
	}
	p.ID = id
	shared.Audit(r, h.Audit, user.UserID, "projects.update", "project", id, before, p)
	api.Success(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	id := chi.URLParam(r, "projectID")
	before, err := h.Service.Get(r.Context(), id)
	if err != nil {
		api.FailErr(w, reqID, err)
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		api.FailErr(w, reqID, err, projectErrors...)
		return
	}
	shared.Audit(r, h.Audit, user.UserID, "projects.delete", "project", id, before, nil)
	api.Success(w, map[string]string{"id": id, "status": "deleted"}, reqID)
}
