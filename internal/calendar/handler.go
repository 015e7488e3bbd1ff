package calendar

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/workstack/workforce-management/internal"
	"github.com/workstack/workforce-management/internal/auth"
	"github.com/workstack/workforce-management/internal/transport"
)

type HolidayAPI interface {
	AddHoliday(actor auth.Identity, dto CreateHolidayDTO) (*Holiday, error)
	ListHolidays(actor auth.Identity, year int) ([]*Holiday, error)
}

type Handler struct {
	*transport.BaseHandler
	Service HolidayAPI
}

func NewHandler(service HolidayAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(nil),
		Service:     service,
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateHolidayDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	holiday, err := h.Service.AddHoliday(*actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, holiday)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	year := time.Now().Year()
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		parsed, err := strconv.Atoi(yearStr)
		if err != nil || parsed < 2000 || parsed > 2100 {
			h.HandleServiceError(w, internal.NewValidationFieldError("year", "year must be a four-digit year", internal.ErrCodeValidationFailed))
			return
		}
		year = parsed
	}

	holidays, err := h.Service.ListHolidays(*actor, year)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, holidays)
}
