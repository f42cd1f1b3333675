package routes

import (
	"errors"

	"github.com/Mandeep1904/flight-price-prediction/pkg/formstate"
	"github.com/Mandeep1904/flight-price-prediction/pkg/itinerary"
	"github.com/Mandeep1904/flight-price-prediction/pkg/session"
	"github.com/Mandeep1904/flight-price-prediction/pkg/view"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

func FormRouter(router fiber.Router, env *Env) {
	router.Get("/", env.withSession, env.getPage)
	router.Post("/field", env.withSession, env.postField)
	router.Post("/submit", env.withSession, env.postSubmit)
	router.Post("/reset", env.withSession, env.postReset)
}

type selectField struct {
	Name     string
	Label    string
	Options  []itinerary.Option
	Selected string
}

type formPage struct {
	DepartureTime    string
	ArrivalTime      string
	Selects          []selectField
	PredictionResult string
	Notification     *formstate.Notification
	Pending          bool
}

var selectLabels = []struct {
	name  string
	label string
}{
	{itinerary.FieldSource, "Source 📍"},
	{itinerary.FieldDestination, "Destination 📍"},
	{itinerary.FieldStops, "Stoppage"},
	{itinerary.FieldAirline, "Which Airline you want to travel?"},
}

func newFormPage(state formstate.State) formPage {
	page := formPage{
		DepartureTime:    state.Input.DepartureTime,
		ArrivalTime:      state.Input.ArrivalTime,
		PredictionResult: state.PredictionResult,
		Notification:     state.Notification,
		Pending:          state.Pending,
	}

	for _, field := range selectLabels {
		selected, _ := state.Input.Get(field.name)

		page.Selects = append(page.Selects, selectField{
			Name:     field.name,
			Label:    field.label,
			Options:  itinerary.Options(field.name),
			Selected: selected,
		})
	}

	return page
}

func (e *Env) getPage(c *fiber.Ctx) error {
	formSession := currentSession(c)

	if formSession.Router.Current() == view.InfoView {
		return render(c, "info.html", infoPage{
			ModelInfo: e.ModelInfo,
			Bars:      e.ModelInfo.Bars(),
		})
	}

	return render(c, "form.html", newFormPage(formSession.Controller.TakeState()))
}

func (e *Env) postField(c *fiber.Ctx) error {
	formSession := currentSession(c)

	var requestBody struct {
		Name  string `json:"name" form:"name"`
		Value string `json:"value" form:"value"`
	}
	if err := c.BodyParser(&requestBody); err != nil {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Request body should contain a field name and value",
		})
	}

	if err := formSession.Controller.SetField(requestBody.Name, requestBody.Value); err != nil {
		c.Status(statusForError(err))
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return sendSessionState(c, formSession, false)
}

func (e *Env) postSubmit(c *fiber.Ctx) error {
	formSession := currentSession(c)

	if err := applyPostedFields(c, formSession); err != nil {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	err := formSession.Controller.Submit(c.UserContext())
	if err != nil {
		log.Debug().Err(err).Str("session", formSession.ID).Msg("Form submission did not produce a prediction")
	}

	if wantsJSON(c) {
		c.Status(statusForError(err))
		return sendSessionState(c, formSession, false)
	}

	return c.Redirect("/", fiber.StatusSeeOther)
}

func (e *Env) postReset(c *fiber.Ctx) error {
	formSession := currentSession(c)

	formSession.Controller.Reset()

	if wantsJSON(c) {
		return sendSessionState(c, formSession, false)
	}

	return c.Redirect("/", fiber.StatusSeeOther)
}

// applyPostedFields copies every itinerary field present in the request body onto
// the form, the same as the user editing each control before pressing Predict.
// A JSON body naming an unknown field changes nothing.
func applyPostedFields(c *fiber.Ctx, formSession *session.Session) error {
	if c.Is("json") {
		fields := map[string]string{}
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&fields); err != nil {
				return errors.New("request body should be an object of itinerary fields")
			}
		}

		return formSession.Controller.SetFields(fields)
	}

	fields := map[string]string{}
	c.Request().PostArgs().VisitAll(func(key []byte, value []byte) {
		if name := string(key); itinerary.IsField(name) {
			fields[name] = string(value)
		}
	})

	return formSession.Controller.SetFields(fields)
}
