package bankinghandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"workforce/internal/domain/audit"
	"workforce/internal/domain/auth"
	"workforce/internal/domain/banking"
	"workforce/internal/platform/logging"
	"workforce/internal/transport/http/api"
	"workforce/internal/transport/http/middleware"
	"workforce/internal/transport/http/shared"
)

type Service interface {
	ListAccounts(ctx context.Context, status string) ([]banking.Account, error)
	GetAccount(ctx context.Context, id string, reveal bool) (*banking.Account, error)
	CreateAccount(ctx context.Context, a banking.Account) (*banking.Account, error)
	UpdateAccount(ctx context.Context, id string, a banking.Account) (*banking.Account, *banking.Account, error)
	ListTransactions(ctx context.Context, filter banking.TxFilter, limit, offset int) ([]banking.Transaction, int, error)
	GetTransaction(ctx context.Context, id string) (*banking.Transaction, error)
	CreateTransaction(ctx context.Context, actorID string, t banking.Transaction) (*banking.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) (*banking.Transaction, error)
	Balance(ctx context.Context, accountID string) (banking.AccountBalance, error)
	Summary(ctx context.Context) (banking.Summary, error)
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
	Audit   audit.Recorder
}

func NewHandler(service Service, perms middleware.PermissionStore, recorder audit.Recorder) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: recorder}
}

type accountRequest struct {
	BankName       string  `json:"bankName"`
	AccountName    string  `json:"accountName"`
	AccountNumber  string  `json:"accountNumber"`
	OpeningBalance float64 `json:"openingBalance"`
	Currency       string  `json:"currency"`
	Status         string  `json:"status"`
}

func (p accountRequest) validate(w http.ResponseWriter, reqID string) bool {
	v := shared.NewValidator()
	v.Required("bankName", p.BankName, "is required")
	v.Required("accountName", p.AccountName, "is required")
	v.Enum("status", p.Status, banking.AccountStatuses, "must be active or inactive")
	if p.Currency != "" && len(p.Currency) != 3 {
		v.Add("currency", "must be a three-letter code")
	}
	return !v.Reject(w, reqID)
}

func (p accountRequest) account() banking.Account {
	return banking.Account{
		BankName:       p.BankName,
		AccountName:    p.AccountName,
		AccountNumber:  p.AccountNumber,
		OpeningBalance: p.OpeningBalance,
		Currency:       p.Currency,
		Status:         p.Status,
	}
}

type transactionRequest struct {
	AccountID   string  `json:"accountId"`
	Type        string  `json:"type"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Reference   string  `json:"reference"`
	ClientID    string  `json:"clientId"`
	ProfileID   string  `json:"profileId"`
}

func (p transactionRequest) transaction(w http.ResponseWriter, reqID string) (banking.Transaction, bool) {
	v := shared.NewValidator()
	v.Required("accountId", p.AccountID, "is required")
	v.Required("type", p.Type, "is required")
	v.Enum("type", p.Type, banking.TransactionTypes, "must be deposit or withdrawal")
	v.Enum("category", p.Category, banking.Categories, "is not a known category")
	if p.Amount <= 0 {
		v.Add("amount", "must be greater than zero")
	}
	date, _ := v.Date("date", p.Date)
	if v.Reject(w, reqID) {
		return banking.Transaction{}, false
	}
	return banking.Transaction{
		AccountID:   p.AccountID,
		Type:        p.Type,
		Category:    p.Category,
		Amount:      p.Amount,
		Date:        date,
		Description: p.Description,
		Reference:   p.Reference,
		ClientID:    p.ClientID,
		ProfileID:   p.ProfileID,
	}, true
}

var bankingErrors = []api.Mapping{
	api.BadRequest(banking.ErrBankNameRequired),
	api.BadRequest(banking.ErrAccountNameRequired),
	api.BadRequest(banking.ErrInvalidStatus),
	api.BadRequest(banking.ErrInvalidCurrency),
	api.BadRequest(banking.ErrInvalidType),
	api.BadRequest(banking.ErrInvalidCategory),
	api.BadRequest(banking.ErrNonPositiveAmount),
	api.BadRequest(banking.ErrDateRequired),
	api.BadRequest(banking.ErrInvalidReference),
	api.Conflict(banking.ErrAccountInactive),
	api.Conflict(banking.ErrPayrollLinked),
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermBankingRead, h.Perms)
	write := middleware.RequirePermission(auth.PermBankingWrite, h.Perms)

	r.Route("/bank-accounts", func(r chi.Router) {
		r.With(read).Get("/", h.handleListAccounts)
		r.With(write).Post("/", h.handleCreateAccount)
		r.With(read).Get("/{accountID}", h.handleGetAccount)
		r.With(write).Put("/{accountID}", h.handleUpdateAccount)
		r.With(read).Get("/{accountID}/balance", h.handleBalance)
	})
	r.Route("/bank-transactions", func(r chi.Router) {
		r.With(read).Get("/", h.handleListTransactions)
		r.With(write).Post("/", h.handleCreateTransaction)
		r.With(read).Get("/{transactionID}", h.handleGetTransaction)
		r.With(write).Delete("/{transactionID}", h.handleDeleteTransaction)
	})
	r.With(read).Get("/banking/summary", h.handleSummary)
}

func (h *Handler) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	status := r.URL.Query().Get("status")
	v := shared.NewValidator()
	v.Enum("status", status, banking.AccountStatuses, "must be active or inactive")
	if v.Reject(w, reqID) {
		return
	}
	items, err := h.Service.ListAccounts(r.Context(), status)
	if err != nil {
		api.FailErr(w, reqID, err)
		return
	}
	api.List(w, items, api.Meta{Total: len(items), Limit: len(items)}, reqID)
}

// handleGetAccount reveals the full account number only when asked for and
// only to callers allowed to edit accounts.
func (h *Handler) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	reveal := r.URL.Query().Get("reveal") == "true"
	if reveal {
		allowed, err := h.Perms.HasPermission(r.Context(), user.RoleName, auth.PermBankingWrite)
		if err != nil {
			logging.FromContext(r.Context()).Error("permission lookup failed", "err", err)
			api.Fail(w, http.StatusInternalServerError, "internal_error", "internal server error", reqID)
			return
		}
		if !allowed {
			api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions to reveal account numbers", reqID)
			return
		}
	}
	id := chi.URLParam(r, "accountID")
	account, err := h.Service.GetAccount(r.Context(), id, reveal)
	if err != nil {
		api.FailErr(w, reqID, err)
		return
	}
	if reveal {
		shared.Audit(r, h.Audit, user.UserID, "bank_account.reveal", "bank_account", id, nil, nil)
	}
	api.Success(w, account, reqID)
}

func (h *Handler) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	var payload accountRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) || !payload.validate(w, reqID) {
		return
	}
	account, err := h.Service.CreateAccount(r.Context(), payload.account())
	if err != nil {
		api.FailErr(w, reqID, err, bankingErrors...)
		return
	}
	shared.Audit(r, h.Audit, user.UserID, "bank_account.create", "bank_account", account.ID, nil, account)
	api.Created(w, account, reqID)
}

func (h *Handler) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	var payload accountRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) || !payload.validate(w, reqID) {
		return
	}
	id := chi.URLParam(r, "accountID")
	before, after, err := h.Service.UpdateAccount(r.Context(), id, payload.account())
	if err != nil {
		api.FailErr(w, reqID, err, bankingErrors...)
		return
	}
	shared.Audit(r, h.Audit, user.UserID, "bank_account.update", "bank_account", id, before, after)
	api.Success(w, after, reqID)
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	balance, err := h.Service.Balance(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		api.FailErr(w, reqID, err)
		return
	}
	api.Success(w, balance, reqID)
}

func (h *Handler) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()
	v := shared.NewValidator()
	v.Enum("type", q.Get("type"), banking.TransactionTypes, "must be deposit or withdrawal")
	v.Enum("category", q.Get("category"), banking.Categories, "is not a known category")
	from := v.OptionalDate("from", q.Get("from"))
	to := v.OptionalDate("to", q.Get("to"))
	v.DateOrder("from", from, "to", to)
	if v.Reject(w, reqID) {
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	filter := banking.TxFilter{
		AccountID: q.Get("accountId"),
		Type:      q.Get("type"),
		Category:  q.Get("category"),
		From:      from,
		To:        to,
	}
	items, total, err := h.Service.ListTransactions(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		api.FailErr(w, reqID, err)
		return
	}
	api.List(w, items, page.Meta(total), reqID)
}

func (h *Handler) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	t, err := h.Service.GetTransaction(r.Context(), chi.URLParam(r, "transactionID"))
	if err != nil {
		api.FailErr(w, reqID, err)
		return
	}
	api.Success(w, t, reqID)
}

func (h *Handler) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	var payload transactionRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	tx, ok := payload.transaction(w, reqID)
	if !ok {
		return
	}
	created, err := h.Service.CreateTransaction(r.Context(), user.UserID, tx)
	if err != nil {
		api.FailErr(w, reqID, err, bankingErrors...)
		return
	}
	shared.Audit(r, h.Audit, user.UserID, "bank_transaction.create", "bank_transaction", created.ID, nil, created)
	api.Created(w, created, reqID)
}

func (h *Handler) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	id := chi.URLParam(r, "transactionID")
	before, err := h.Service.DeleteTransaction(r.Context(), id)
	if err != nil {
		api.FailErr(w, reqID, err, bankingErrors...)
		return
	}
	shared.Audit(r, h.Audit, user.UserID, "bank_transaction.delete", "bank_transaction", id, before, nil)
	api.Success(w, map[string]string{"id": id, "status": "deleted"}, reqID)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	summary, err := h.Service.Summary(r.Context())
	if err != nil {
		api.FailErr(w, reqID, err)
		return
	}
	api.Success(w, summary, reqID)
}
