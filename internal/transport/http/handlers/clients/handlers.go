package clientshandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"workforce/internal/domain/audit"
	"workforce/internal/domain/auth"
	"workforce/internal/domain/clients"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

type Service interface {
	List(ctx context.Context, filter clients.Filter, limit, offset int) ([]clients.Client, int, error)
	Get(ctx context.Context, id string) (*clients.Client, error)
	Create(ctx context.Context, c clients.Client) (string, error)
	Update(ctx context.Context, id string, c clients.Client) (*clients.Client, error)
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

type clientRequest struct {
	CompanyName   string `json:"companyName"`
	ContactPerson string `json:"contactPerson"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	Status        string `json:"status"`
}

func (p clientRequest) validate(w http.ResponseWriter, reqID string) bool {
	v := shared.NewValidator()
	v.Required("companyName", p.CompanyName, "is required")
	v.OptionalEmail("email", p.Email)
	v.Enum("status", p.Status, clients.Statuses, "must be active or inactive")
	return !v.Reject(w, reqID)
}

func (p clientRequest) client() clients.Client {
	return clients.Client{
		CompanyName:   p.CompanyName,
		ContactPerson: p.ContactPerson,
		Email:         p.Email,
		Phone:         p.Phone,
		Address:       p.Address,
		Status:        p.Status,
	}
}

var clientErrors = []api.Mapping{
	api.BadRequest(clients.ErrNameRequired),
	api.BadRequest(clients.ErrInvalidStatus),
	api.Conflict(clients.ErrHasProjects),
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/clients", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermClientsRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermClientsWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermClientsRead, h.Perms)).Get("/{clientID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermClientsWrite, h.Perms)).Put("/{clientID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermClientsWrite, h.Perms)).Delete("/{clientID}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()
	v := shared.NewValidator()
	v.Enum("status", q.Get("status"), clients.Statuses, "must be active or inactive")
	if v.Reject(w, reqID) {
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	items, total, err := h.Service.List(r.Context(), clients.Filter{Status: q.Get("status"), Search: q.Get("search")}, page.Limit, page.Offset)
	if err != nil {
		api.FailErr(w, reqID, err)
		return
	}
	api.List(w, items, page.Meta(total), reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	c, err := h.Service.Get(r.Context(), chi.URLParam(r, "clientID"))
	if err != nil {
		api.FailErr(w, reqID, err)
		return
	}
	api.Success(w, c, reqID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	var payload clientRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) || !payload.validate(w, reqID) {
		return
	}
	c := payload.client()
	id, err := h.Service.Create(r.Context(), c)
	if err != nil {
		api.FailErr(w, reqID, err, clientErrors...)
		return
	}
	c.ID = id
	shared.Audit(r, h.Audit, user.UserID, "clients.create", "client", id, nil, c)
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	var payload clientRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) || !payload.validate(w, reqID) {
		return
	}
	id := chi.URLParam(r, "clientID")
	c := payload.client()
	before, err := h.Service.Update(r.Context(), id, c)
	if err != nil {
		api.FailErr(w, reqID, err, clientErrors...)
		return
	}
	c.ID = id
	shared.Audit(r, h.Audit, user.UserID, "clients.update", "client", id, before, c)
	api.Success(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	id := chi.URLParam(r, "clientID")
	before, err := h.Service.Get(r.Context(), id)
	if err != nil {
		api.FailErr(w, reqID, err)
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		api.FailErr(w, reqID, err, clientErrors...)
		return
	}
	shared.Audit(r, h.Audit, user.UserID, "clients.delete", "client", id, before, nil)
	api.Success(w, map[string]string{"id": id, "status": "deleted"}, reqID)
}
