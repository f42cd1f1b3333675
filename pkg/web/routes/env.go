package routes

import (
	"errors"

	"github.com/Mandeep1904/flight-price-prediction/pkg/formstate"
	"github.com/Mandeep1904/flight-price-prediction/pkg/itinerary"
	"github.com/Mandeep1904/flight-price-prediction/pkg/modelinfo"
	"github.com/Mandeep1904/flight-price-prediction/pkg/prediction"
	"github.com/Mandeep1904/flight-price-prediction/pkg/session"
	"github.com/Mandeep1904/flight-price-prediction/pkg/view"
	"github.com/gofiber/fiber/v2"
)

// Env carries what the route handlers share
type Env struct {
	Sessions      *session.Store
	ModelInfo     *modelinfo.ModelInfo
	NewController func() *formstate.Controller
}

func statusForError(err error) int {
	var validationErr *itinerary.ValidationError
	var transportErr *prediction.TransportError

	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.As(err, &validationErr):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, formstate.ErrSubmissionPending), errors.Is(err, view.ErrInvalidTransition):
		return fiber.StatusConflict
	case errors.Is(err, itinerary.ErrUnknownField):
		return fiber.StatusBadRequest
	case errors.As(err, &transportErr):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func wantsJSON(c *fiber.Ctx) bool {
	return c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON
}
