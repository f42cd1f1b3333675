package routes

import (
	"github.com/Mandeep1904/flight-price-prediction/pkg/view"
	"github.com/gofiber/fiber/v2"
)

func ViewRouter(router fiber.Router, env *Env) {
	router.Post("/model-info", env.withSession, env.changeView((*view.Router).ShowModelInfo))
	router.Post("/back", env.withSession, env.changeView((*view.Router).GoBack))
}

func (e *Env) changeView(transition func(*view.Router) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		formSession := currentSession(c)

		err := transition(formSession.Router)

		if wantsJSON(c) {
			c.Status(statusForError(err))
			return sendSessionState(c, formSession, false)
		}

		// A repeated click lands on the page it asked for anyway
		return c.Redirect("/", fiber.StatusSeeOther)
	}
}
