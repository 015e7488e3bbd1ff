package leave

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	"github.com/workstack/workforce-management/internal"
	"github.com/workstack/workforce-management/internal/auth"
	"github.com/workstack/workforce-management/internal/calendar"
	"github.com/workstack/workforce-management/internal/transport"
)

type ServiceAPI interface {
	CreateRequest(actor auth.Identity, dto CreateRequestDTO) (*Request, error)
	GetRequest(actor auth.Identity, id int64) (*Request, error)
	ListOwn(actor auth.Identity, limit, offset int) ([]*Request, error)
	UpdateRequest(actor auth.Identity, id int64, dto CreateRequestDTO) (*Request, error)
	DeleteRequest(actor auth.Identity, id int64) error
	Submit(actor auth.Identity, id int64) (*Request, error)
	Approve(actor auth.Identity, id int64) (*Request, error)
	AutoApprove(actor auth.Identity, id int64) (*Request, error)
	Reject(actor auth.Identity, id int64, dto RejectRequestDTO) (*Request, error)
	PendingForManager(actor auth.Identity, q internal.PageQuery) (*PendingPage, error)
	Balances(actor auth.Identity, employeeID int64, year int) ([]*Balance, error)
	ResetBalances(actor auth.Identity, dto ResetBalanceDTO) ([]BalanceAdjustment, error)
	PreviewRange(actor auth.Identity, start, end time.Time) ([]calendar.DayClassification, int, error)
}

type Handler struct {
	*transport.BaseHandler
	Service     ServiceAPI
	MaxPageSize int
}

func NewHandler(service ServiceAPI, maxPageSize int) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(nil),
		Service:     service,
		MaxPageSize: maxPageSize,
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	request, err := h.Service.CreateRequest(*actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, request)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	request, err := h.Service.GetRequest(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, request)
}

func (h *Handler) ListOwn(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit, offset := 20, 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= h.MaxPageSize {
			limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	requests, err := h.Service.ListOwn(*actor, limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"requests": requests,
		"limit":    limit,
		"offset":   offset,
	})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var dto CreateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	request, err := h.Service.UpdateRequest(actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, request)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteRequest(actor, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(actor auth.Identity, id int64) (*Request, error) {
		return h.Service.Submit(actor, id)
	})
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(actor auth.Identity, id int64) (*Request, error) {
		return h.Service.Approve(actor, id)
	})
}

func (h *Handler) AutoApprove(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(actor auth.Identity, id int64) (*Request, error) {
		return h.Service.AutoApprove(actor, id)
	})
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var dto RejectRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	request, err := h.Service.Reject(actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, request)
}

func (h *Handler) Pending(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	q, err := internal.ParsePageQuery(r.URL.Query(), h.MaxPageSize)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	page, err := h.Service.PendingForManager(*actor, q)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, page)
}

// Balances serves an employee's per-type balances. Defaults to the caller
// and the current year.
func (h *Handler) Balances(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	employeeID := actor.EmployeeID
	if idStr := r.URL.Query().Get("employee_id"); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid employee ID")
			return
		}
		employeeID = id
	}

	year := time.Now().Year()
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		y, err := strconv.Atoi(yearStr)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = y
	}

	balances, err := h.Service.Balances(*actor, employeeID, year)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"employee_id": employeeID,
		"year":        year,
		"balances":    balances,
	})
}

func (h *Handler) ResetBalances(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto ResetBalanceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	adjustments, err := h.Service.ResetBalances(*actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"employee_id": dto.EmployeeID,
		"year":        dto.Year,
		"adjustments": adjustments,
	})
}

// Preview classifies each day of a candidate range before a request is
// created.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	start, err := time.Parse("2006-01-02", r.URL.Query().Get("start"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "start must be a date in YYYY-MM-DD form")
		return
	}
	end, err := time.Parse("2006-01-02", r.URL.Query().Get("end"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "end must be a date in YYYY-MM-DD form")
		return
	}

	days, working, err := h.Service.PreviewRange(*actor, start, end)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"days":         days,
		"working_days": working,
	})
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(auth.Identity, int64) (*Request, error)) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	request, err := op(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, request)
}

func (h *Handler) actorAndID(w http.ResponseWriter, r *http.Request) (auth.Identity, int64, bool) {
	actor, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return auth.Identity{}, 0, false
	}

	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request ID")
		return auth.Identity{}, 0, false
	}
	return *actor, id, true
}
