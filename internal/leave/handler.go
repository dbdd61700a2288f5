package leave

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/prasetyadi/hr-platform/internal/auth"
	"github.com/prasetyadi/hr-platform/internal/personnel"
	"github.com/prasetyadi/hr-platform/internal/transport"
	"github.com/prasetyadi/hr-platform/pkg/logger"
)

// PersonnelResolver maps an authenticated user to their personnel record.
// Leave rows are keyed by personnel ID, not user ID.
type PersonnelResolver interface {
	GetByUserID(ctx context.Context, userID int64) (*personnel.Personnel, error)
}

type Handler struct {
	*transport.BaseHandler
	Service   *Service
	Personnel PersonnelResolver
}

func NewHandler(svc *Service, resolver PersonnelResolver) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
		Personnel:   resolver,
	}
}

func (h *Handler) personnelFor(w http.ResponseWriter, r *http.Request) (*personnel.Personnel, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}

	p, err := h.Personnel.GetByUserID(r.Context(), user.ID)
	if err != nil {
		h.Logger.Error("personnel lookup failed", "user_id", user.ID, "error", err)
		h.HandleServiceError(w, err)
		return nil, false
	}
	return p, true
}

func (h *Handler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	p, ok := h.personnelFor(w, r)
	if !ok {
		return
	}

	var dto CreateApplicationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	app, err := h.Service.Apply(r.Context(), p.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, app)
}

func (h *Handler) GetMyApplications(w http.ResponseWriter, r *http.Request) {
	p, ok := h.personnelFor(w, r)
	if !ok {
		return
	}

	apps, err := h.Service.MyApplications(r.Context(), p.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, apps)
}

func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	p, ok := h.personnelFor(w, r)
	if !ok {
		return
	}

	app, err := h.Service.GetApplication(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	// Owners always see their own rows; anyone else needs the read-all
	// permission, enforced by the route guard before we get here.
	user, _ := auth.UserFromContext(r.Context())
	if app.PersonnelID != p.ID && (user == nil || !user.Permissions.Contains(auth.PermissionLeaveRequestRead)) {
		h.WriteError(w, http.StatusNotFound, "leave application not found")
		return
	}

	h.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) UpdateApplication(w http.ResponseWriter, r *http.Request) {
	p, ok := h.personnelFor(w, r)
	if !ok {
		return
	}

	var dto UpdateApplicationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	app, err := h.Service.Edit(r.Context(), p.ID, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) CancelApplication(w http.ResponseWriter, r *http.Request) {
	p, ok := h.personnelFor(w, r)
	if !ok {
		return
	}

	if err := h.Service.Cancel(r.Context(), p.ID, chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetPendingApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.Service.PendingQueue(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, apps)
}

func (h *Handler) ApproveApplication(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	app, err := h.Service.Approve(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) RejectApplication(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	app, err := h.Service.Reject(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) GetMyBalances(w http.ResponseWriter, r *http.Request) {
	p, ok := h.personnelFor(w, r)
	if !ok {
		return
	}

	balances, err := h.Service.BalancesFor(r.Context(), p.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, balances)
}

func (h *Handler) GetBalancesForPersonnel(w http.ResponseWriter, r *http.Request) {
	balances, err := h.Service.BalancesFor(r.Context(), chi.URLParam(r, "personnelID"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, balances)
}

func (h *Handler) InitializeBalance(w http.ResponseWriter, r *http.Request) {
	var dto InitializeBalanceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	balance, err := h.Service.InitializeBalance(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, balance)
}

func (h *Handler) GetLeaveTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Service.ActiveLeaveTypes(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, types)
}

func (h *Handler) GetAllLeaveTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Service.AllLeaveTypes(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, types)
}

func (h *Handler) CreateLeaveType(w http.ResponseWriter, r *http.Request) {
	var dto CreateLeaveTypeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lt, err := h.Service.CreateLeaveType(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, lt)
}

func (h *Handler) UpdateLeaveType(w http.ResponseWriter, r *http.Request) {
	var dto UpdateLeaveTypeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lt, err := h.Service.UpdateLeaveType(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, lt)
}

func (h *Handler) CreateMonetization(w http.ResponseWriter, r *http.Request) {
	p, ok := h.personnelFor(w, r)
	if !ok {
		return
	}

	var dto CreateMonetizationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := h.Service.RequestMonetization(r.Context(), p.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, m)
}

func (h *Handler) GetMyMonetizations(w http.ResponseWriter, r *http.Request) {
	p, ok := h.personnelFor(w, r)
	if !ok {
		return
	}

	ms, err := h.Service.MyMonetizations(r.Context(), p.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ms)
}

func (h *Handler) GetPendingMonetizations(w http.ResponseWriter, r *http.Request) {
	ms, err := h.Service.PendingMonetizations(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ms)
}

func (h *Handler) ApproveMonetization(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto ApproveMonetizationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := h.Service.ApproveMonetization(r.Context(), user.ID, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, m)
}
