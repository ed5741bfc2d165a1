package request

import (
	"context"
	"net/http"
	"strings"

	"github.com/frahmantamala/access-management/internal"
	"github.com/frahmantamala/access-management/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, caller *internal.Identity, dto CreateRequestDTO) (*Request, error)
	ListOwn(ctx context.Context, caller *internal.Identity) ([]*Request, error)
	Get(ctx context.Context, caller *internal.Identity, id int64) (*Request, error)
	ListPending(ctx context.Context, caller *internal.Identity) ([]*Request, error)
	UpdateStatus(ctx context.Context, caller *internal.Identity, id int64, dto UpdateStatusDTO) (*Request, error)
	Stats(ctx context.Context, caller *internal.Identity) (*Stats, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	identity, _ := internal.IdentityFromContext(r.Context())

	var dto CreateRequestDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	req, err := h.Service.Create(r.Context(), identity, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, RequestMutationResponse{
		Message: "Request submitted successfully",
		Request: req,
	})
}

func (h *Handler) GetMyRequests(w http.ResponseWriter, r *http.Request) {
	identity, _ := internal.IdentityFromContext(r.Context())

	list, err := h.Service.ListOwn(r.Context(), identity)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, RequestsResponse{Requests: list})
}

func (h *Handler) GetPendingRequests(w http.ResponseWriter, r *http.Request) {
	identity, _ := internal.IdentityFromContext(r.Context())

	list, err := h.Service.ListPending(r.Context(), identity)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, RequestsResponse{Requests: list})
}

func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	identity, _ := internal.IdentityFromContext(r.Context())

	id, appErr := h.ParseIDParam(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	req, err := h.Service.Get(r.Context(), identity, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, RequestResponse{Request: req})
}

func (h *Handler) UpdateRequestStatus(w http.ResponseWriter, r *http.Request) {
	identity, _ := internal.IdentityFromContext(r.Context())

	id, appErr := h.ParseIDParam(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	var dto UpdateStatusDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	req, err := h.Service.UpdateStatus(r.Context(), identity, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, RequestMutationResponse{
		Message: "Request " + strings.ToLower(string(req.Status)) + " successfully",
		Request: req,
	})
}

func (h *Handler) GetRequestStats(w http.ResponseWriter, r *http.Request) {
	identity, _ := internal.IdentityFromContext(r.Context())

	stats, err := h.Service.Stats(r.Context(), identity)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, StatsResponse{Stats: *stats})
}
