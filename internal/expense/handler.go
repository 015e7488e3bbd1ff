package expense

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/workstack/workforce-management/internal"
	"github.com/workstack/workforce-management/internal/auth"
	"github.com/workstack/workforce-management/internal/transport"
)

type ServiceAPI interface {
	CreateClaim(actor auth.Identity, dto CreateClaimDTO) (*Claim, error)
	GetClaim(actor auth.Identity, id int64) (*Claim, error)
	ListOwn(actor auth.Identity, limit, offset int) ([]*Claim, error)
	UpdateClaim(actor auth.Identity, id int64, dto CreateClaimDTO) (*Claim, error)
	DeleteClaim(actor auth.Identity, id int64) error
	Submit(actor auth.Identity, id int64) (*Claim, error)
	Approve(actor auth.Identity, id int64) (*Claim, error)
	AutoApprove(actor auth.Identity, id int64) (*Claim, error)
	Reject(actor auth.Identity, id int64, dto RejectClaimDTO) (*Claim, error)
	PendingForManager(actor auth.Identity, q internal.PageQuery) (*PendingPage, error)
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

	var dto CreateClaimDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claim, err := h.Service.CreateClaim(*actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, claim)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	claim, err := h.Service.GetClaim(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, claim)
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

	claims, err := h.Service.ListOwn(*actor, limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"claims": claims,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var dto CreateClaimDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claim, err := h.Service.UpdateClaim(actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, claim)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteClaim(actor, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(actor auth.Identity, id int64) (*Claim, error) {
		return h.Service.Submit(actor, id)
	})
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(actor auth.Identity, id int64) (*Claim, error) {
		return h.Service.Approve(actor, id)
	})
}

func (h *Handler) AutoApprove(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(actor auth.Identity, id int64) (*Claim, error) {
		return h.Service.AutoApprove(actor, id)
	})
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var dto RejectClaimDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claim, err := h.Service.Reject(actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, claim)
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

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(auth.Identity, int64) (*Claim, error)) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	claim, err := op(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, claim)
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
		h.WriteError(w, http.StatusBadRequest, "invalid claim ID")
		return auth.Identity{}, 0, false
	}
	return *actor, id, true
}
