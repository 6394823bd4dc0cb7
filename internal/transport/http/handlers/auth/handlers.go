package authhandler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"workforce/internal/domain/audit"
	"workforce/internal/domain/auth"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

// Service is the part of auth.Service the handlers call.
type Service interface {
	Login(ctx context.Context, email, password, mfaCode string) (auth.LoginResult, error)
	Refresh(ctx context.Context, token string) (auth.LoginResult, error)
	Logout(ctx context.Context, user auth.UserContext) error
	ChangePassword(ctx context.Context, user auth.UserContext, current, next string) error
	SetupMFA(ctx context.Context, user auth.UserContext) (auth.MFASetup, error)
	EnableMFA(ctx context.Context, user auth.UserContext, code string) error
	DisableMFA(ctx context.Context, user auth.UserContext, code string) error
	HasPermission(ctx context.Context, role, permission string) (bool, error)
	RolePermissions(ctx context.Context) (map[string][]string, error)
	SetRolePermissions(ctx context.Context, role string, perms []string) ([]string, error)
}

type Handler struct {
	Service Service
	Audit   audit.Recorder
}

func NewHandler(service Service, recorder audit.Recorder) *Handler {
	return &Handler{Service: service, Audit: recorder}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	MFACode  string `json:"mfaCode"`
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type mfaCodeRequest struct {
	Code string `json:"code"`
}

type permissionsRequest struct {
	Permissions []string `json:"permissions"`
}

var loginErrors = []api.Mapping{
	{Err: auth.ErrInvalidCredentials, Status: http.StatusUnauthorized, Code: "invalid_credentials"},
	{Err: auth.ErrMFARequired, Status: http.StatusUnauthorized, Code: "mfa_required"},
	{Err: auth.ErrMFAInvalid, Status: http.StatusUnauthorized, Code: "mfa_invalid"},
	{Err: auth.ErrSessionExpired, Status: http.StatusUnauthorized, Code: "unauthorized"},
}

var mfaErrors = []api.Mapping{
	{Err: auth.ErrMFAUnavailable, Status: http.StatusBadRequest, Code: "mfa_unavailable"},
	{Err: auth.ErrMFANotSetUp, Status: http.StatusBadRequest, Code: "mfa_missing"},
	{Err: auth.ErrMFAInvalid, Status: http.StatusBadRequest, Code: "mfa_invalid"},
	{Err: auth.ErrMFAAlreadyEnabled, Status: http.StatusConflict, Code: "mfa_enabled"},
}

// RegisterPublicRoutes mounts the endpoints that run before authentication.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
	r.Post("/auth/refresh", h.HandleRefresh)
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/logout", h.HandleLogout)
		r.Post("/password", h.HandleChangePassword)
		r.Post("/mfa/setup", h.HandleMFASetup)
		r.Post("/mfa/enable", h.HandleMFAEnable)
		r.Post("/mfa/disable", h.HandleMFADisable)
	})
	r.Route("/permissions", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermPermissionsManage, h.Service))
		r.Get("/", h.handleListPermissions)
		r.Put("/{role}", h.handleSetPermissions)
	})
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload loginRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	v := shared.NewValidator()
	v.Required("email", payload.Email, "is required")
	v.Required("password", payload.Password, "is required")
	if v.Reject(w, reqID) {
		return
	}

	result, err := h.Service.Login(r.Context(), payload.Email, payload.Password, payload.MFACode)
	if err != nil {
		api.FailErr(w, reqID, err, loginErrors...)
		return
	}
	shared.Audit(r, h.Audit, result.User.ID, "auth.login", "profile", result.User.ID, nil, nil)
	api.Success(w, result, reqID)
}

func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	result, err := h.Service.Refresh(r.Context(), parts[1])
	if err != nil {
		api.FailErr(w, reqID, err, loginErrors...)
		return
	}
	api.Success(w, result, reqID)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	if err := h.Service.Logout(r.Context(), user); err != nil {
		api.FailErr(w, reqID, err)
		return
	}
	shared.Audit(r, h.Audit, user.UserID, "auth.logout", "profile", user.UserID, nil, nil)
	api.Success(w, map[string]string{"status": "logged_out"}, reqID)
}

func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	var payload passwordRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	v := shared.NewValidator()
	v.Required("currentPassword", payload.CurrentPassword, "is required")
	v.Required("newPassword", payload.NewPassword, "is required")
	if v.Reject(w, reqID) {
		return
	}

	err := h.Service.ChangePassword(r.Context(), user, payload.CurrentPassword, payload.NewPassword)
	if err != nil {
		api.FailErr(w, reqID, err,
			api.Mapping{Err: auth.ErrInvalidCredentials, Status: http.StatusBadRequest, Code: "invalid_credentials"},
			api.Mapping{Err: auth.ErrWeakPassword, Status: http.StatusBadRequest, Code: "weak_password"},
		)
		return
	}
	shared.Audit(r, h.Audit, user.UserID, "auth.password_change", "profile", user.UserID, nil, nil)
	api.Success(w, map[string]string{"status": "password_changed"}, reqID)
}

func (h *Handler) HandleMFASetup(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	setup, err := h.Service.SetupMFA(r.Context(), user)
	if err != nil {
		api.FailErr(w, reqID, err, mfaErrors...)
		return
	}
	api.Success(w, setup, reqID)
}

func (h *Handler) HandleMFAEnable(w http.ResponseWriter, r *http.Request) {
	h.toggleMFA(w, r, true)
}

func (h *Handler) HandleMFADisable(w http.ResponseWriter, r *http.Request) {
	h.toggleMFA(w, r, false)
}

func (h *Handler) toggleMFA(w http.ResponseWriter, r *http.Request, enable bool) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	var payload mfaCodeRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	v := shared.NewValidator()
	v.Required("code", payload.Code, "is required")
	if v.Reject(w, reqID) {
		return
	}

	var err error
	action, status := "auth.mfa_enable", "enabled"
	if enable {
		err = h.Service.EnableMFA(r.Context(), user, payload.Code)
	} else {
		action, status = "auth.mfa_disable", "disabled"
		err = h.Service.DisableMFA(r.Context(), user, payload.Code)
	}
	if err != nil {
		api.FailErr(w, reqID, err, mfaErrors...)
		return
	}
	shared.Audit(r, h.Audit, user.UserID, action, "profile", user.UserID, nil, nil)
	api.Success(w, map[string]string{"status": status}, reqID)
}

func (h *Handler) handleListPermissions(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	grants, err := h.Service.RolePermissions(r.Context())
	if err != nil {
		api.FailErr(w, reqID, err)
		return
	}
	api.Success(w, map[string]any{
		"roles":       auth.Roles,
		"permissions": auth.AllPermissions,
		"grants":      grants,
	}, reqID)
}

func (h *Handler) handleSetPermissions(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	role := chi.URLParam(r, "role")
	var payload permissionsRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}

	before, err := h.Service.RolePermissions(r.Context())
	if err != nil {
		api.FailErr(w, reqID, err)
		return
	}
	granted, err := h.Service.SetRolePermissions(r.Context(), role, payload.Permissions)
	if err != nil {
		api.FailErr(w, reqID, err,
			api.NotFound(auth.ErrUnknownRole),
			api.BadRequest(auth.ErrUnknownPermission),
			api.Conflict(auth.ErrAdminLockout),
		)
		return
	}
	shared.Audit(r, h.Audit, user.UserID, "permissions.update", "role", role, before[role], granted)
	api.Success(w, map[string]any{"role": role, "permissions": granted}, reqID)
}
