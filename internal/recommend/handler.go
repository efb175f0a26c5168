// AngelaMos | 2026
// handler.go

package recommend

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/carterperez-dev/stackrec/internal/archetype"
	"github.com/carterperez-dev/stackrec/internal/core"
	"github.com/carterperez-dev/stackrec/internal/stack"
)

const maxBodyBytes = 64 << 10

type Handler struct {
	service    *Service
	archetypes *archetype.Table
	validator  *validator.Validate
}

func NewHandler(service *Service, archetypes *archetype.Table) *Handler {
	return &Handler{
		service:    service,
		archetypes: archetypes,
		validator:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/recommendations", h.Recommend)
	r.Get("/archetypes", h.ListArchetypes)
}

func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	result, err := h.service.Recommend(r.Context(), req.Profile())
	if err != nil {
		switch {
		case errors.Is(err, stack.ErrInsufficientBudget):
			core.JSONError(w, core.UnprocessableError(
				"INSUFFICIENT_BUDGET",
				"budget is below the price of the cheapest core supplement",
				err,
			))
		case errors.Is(err, stack.ErrNoCandidates):
			core.JSONError(w, core.UnprocessableError(
				"NO_CANDIDATES",
				"no products match this profile",
				err,
			))
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, core.FormatValidationError(err))
		case errors.Is(err, core.ErrServiceUnavailable):
			core.ServiceUnavailable(w, "product catalog is temporarily unavailable")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, ToRecommendResponse(result))
}

func (h *Handler) ListArchetypes(w http.ResponseWriter, r *http.Request) {
	core.OK(w, ToArchetypeResponses(h.archetypes.All()))
}
