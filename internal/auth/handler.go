package auth

import (
	"encoding/json"
	"net/http"

	"github.com/workstack/workforce-management/internal/transport"
)

type LoginAPI interface {
	Authenticate(dto LoginDTO) (*TokenResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service LoginAPI
}

func NewHandler(service LoginAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(nil),
		Service:     service,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.Service.Authenticate(dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, tokens)
}
