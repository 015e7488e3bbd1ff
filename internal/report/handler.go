package report

import (
	"net/http"
	"strconv"
	"time"

	"github.com/workstack/workforce-management/internal/auth"
	"github.com/workstack/workforce-management/internal/transport"
)

type ServiceAPI interface {
	LeaveReport(actor auth.Identity, year int) (*LeaveReport, error)
	ExpenseReport(actor auth.Identity, year int) (*ExpenseReport, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(nil),
		Service:     service,
	}
}

func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
	actor, year, ok := h.actorAndYear(w, r)
	if !ok {
		return
	}
	report, err := h.Service.LeaveReport(actor, year)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) Expenses(w http.ResponseWriter, r *http.Request) {
	actor, year, ok := h.actorAndYear(w, r)
	if !ok {
		return
	}
	report, err := h.Service.ExpenseReport(actor, year)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) actorAndYear(w http.ResponseWriter, r *http.Request) (auth.Identity, int, bool) {
	actor, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return auth.Identity{}, 0, false
	}

	year := time.Now().Year()
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		y, err := strconv.Atoi(yearStr)
		if err != nil || y < 2000 || y > 2100 {
			h.WriteError(w, http.StatusBadRequest, "invalid year")
			return auth.Identity{}, 0, false
		}
		year = y
	}
	return *actor, year, true
}
