package profileshandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"workforce/internal/domain/audit"
	"workforce/internal/domain/auth"
	"workforce/internal/domain/profiles"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

type Service interface {
	List(ctx context.Context, user auth.UserContext, filter profiles.Filter, limit, offset int) ([]profiles.Profile, int, error)
	Get(ctx context.Context, user auth.UserContext, id string) (*profiles.Profile, error)
	Me(ctx context.Context, user auth.UserContext) (*profiles.Profile, error)
	Create(ctx context.Context, p profiles.Profile, password string) (string, error)
	Update(ctx context.Context, user auth.UserContext, id string, u profiles.Update) (*profiles.Profile, *profiles.Profile, error)
	Deactivate(ctx context.Context, user auth.UserContext, id string) error
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
	Audit   audit.Recorder
}

func NewHandler(service Service, perms middleware.PermissionStore, recorder audit.Recorder) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: recorder}
}

type createRequest struct {
	Email          string  `json:"email"`
	Password       string  `json:"password"`
	FullName       string  `json:"fullName"`
	Role           string  `json:"role"`
	EmploymentType string  `json:"employmentType"`
	HourlyRate     float64 `json:"hourlyRate"`
	Phone          string  `json:"phone"`
	Address        string  `json:"address"`
	Designation    string  `json:"designation"`
	BankName       string  `json:"bankName"`
	BankAccount    string  `json:"bankAccount"`
	BankBSB        string  `json:"bankBsb"`
}

var profileErrors = []api.Mapping{
	api.BadRequest(profiles.ErrInvalidEmploymentType),
	api.BadRequest(profiles.ErrInvalidStatus),
	api.BadRequest(profiles.ErrInvalidRole),
	api.BadRequest(profiles.ErrNegativeRate),
	api.BadRequest(auth.ErrWeakPassword),
	api.Forbidden(profiles.ErrSelfDeactivate),
	api.Forbidden(profiles.ErrSelfDemote),
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/me", h.handleMe)
	r.Route("/profiles", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermProfilesRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermProfilesWrite, h.Perms)).Post("/", h.handleCreate)
		r.Route("/{profileID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermProfilesRead, h.Perms)).Get("/", h.handleGet)
			r.With(middleware.RequirePermission(auth.PermProfilesWrite, h.Perms)).Put("/", h.handleUpdate)
			r.With(middleware.RequirePermission(auth.PermProfilesWrite, h.Perms)).Post("/deactivate", h.handleDeactivate)
		})
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	p, err := h.Service.Me(r.Context(), user)
	if err != nil {
		api.FailErr(w, reqID, err)
		return
	}
	api.Success(w, p, reqID)
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
	v.Enum("status", q.Get("status"), profiles.Statuses, "must be active or inactive")
	v.Enum("role", q.Get("role"), auth.Roles, "is not a known role")
	if v.Reject(w, reqID) {
		return
	}

	page := shared.ParsePagination(r, 50, 200)
	filter := profiles.Filter{Status: q.Get("status"), Role: q.Get("role"), Search: q.Get("search")}
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
	p, err := h.Service.Get(r.Context(), user, chi.URLParam(r, "profileID"))
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
	var payload createRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	v := shared.NewValidator()
	v.Email("email", payload.Email)
	v.Required("fullName", payload.FullName, "is required")
	v.Required("password", payload.Password, "is required")
	v.Enum("role", payload.Role, auth.Roles, "is not a known role")
	v.Enum("employmentType", payload.EmploymentType, profiles.EmploymentTypes, "is not a known employment type")
	v.NonNegative("hourlyRate", payload.HourlyRate)
	if v.Reject(w, reqID) {
		return
	}

	p := profiles.Profile{
		Email:          payload.Email,
		FullName:       payload.FullName,
		Role:           payload.Role,
		EmploymentType: payload.EmploymentType,
		HourlyRate:     payload.HourlyRate,
		Phone:          payload.Phone,
		Address:        payload.Address,
		Designation:    payload.Designation,
		BankName:       payload.BankName,
		BankAccount:    payload.BankAccount,
		BankBSB:        payload.BankBSB,
	}
	id, err := h.Service.Create(r.Context(), p, payload.Password)
	if err != nil {
		api.FailErr(w, reqID, err, profileErrors...)
		return
	}
	p.ID = id
	p.BankAccount = ""
	shared.Audit(r, h.Audit, user.UserID, "profiles.create", "profile", id, nil, p)
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	var payload profiles.Update
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	v := shared.NewValidator()
	if payload.FullName != nil {
		v.Required("fullName", *payload.FullName, "must not be empty")
	}
	if payload.HourlyRate != nil {
		v.NonNegative("hourlyRate", *payload.HourlyRate)
	}
	if v.Reject(w, reqID) {
		return
	}

	id := chi.URLParam(r, "profileID")
	before, after, err := h.Service.Update(r.Context(), user, id, payload)
	if err != nil {
		api.FailErr(w, reqID, err, profileErrors...)
		return
	}
	shared.Audit(r, h.Audit, user.UserID, "profiles.update", "profile", id, redact(*before), redact(*after))
	api.Success(w, after, reqID)
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	id := chi.URLParam(r, "profileID")
	if err := h.Service.Deactivate(r.Context(), user, id); err != nil {
		api.FailErr(w, reqID, err, profileErrors...)
		return
	}
	shared.Audit(r, h.Audit, user.UserID, "profiles.deactivate", "profile", id, nil, map[string]string{"status": profiles.StatusInactive})
	api.Success(w, map[string]string{"id": id, "status": profiles.StatusInactive}, reqID)
}

// redact keeps account numbers out of audit snapshots.
func redact(p profiles.Profile) profiles.Profile {
	if p.BankAccount != "" {
		p.BankAccount = "[redacted]"
	}
	return p
}
