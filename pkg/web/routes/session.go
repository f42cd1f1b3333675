package routes

import (
	"github.com/Mandeep1904/flight-price-prediction/pkg/formstate"
	"github.com/Mandeep1904/flight-price-prediction/pkg/session"
	"github.com/Mandeep1904/flight-price-prediction/pkg/view"
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
)

const SessionCookie = "flightfare_session"

const sessionLocal = "form_session"

func SessionRouter(router fiber.Router, env *Env) {
	router.Get("/session", env.withSession, env.getSession)
}

// withSession attaches the caller's page session, starting a new one with
// default form values when the cookie is missing or has expired
func (e *Env) withSession(c *fiber.Ctx) error {
	formSession, created := e.Sessions.GetOrCreate(c.Cookies(SessionCookie))

	if created {
		c.Cookie(&fiber.Cookie{
			Name:     SessionCookie,
			Value:    formSession.ID,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}

	c.Locals(sessionLocal, formSession)

	return c.Next()
}

func currentSession(c *fiber.Ctx) *session.Session {
	return c.Locals(sessionLocal).(*session.Session)
}

type sessionResponse struct {
	Session string          `json:"session" groups:"basic"`
	View    view.View       `json:"view" groups:"basic"`
	State   formstate.State `json:"state" groups:"basic,detailed"`
}

func (e *Env) getSession(c *fiber.Ctx) error {
	return sendSessionState(c, currentSession(c), c.QueryBool("detailed", false))
}

func sendSessionState(c *fiber.Ctx, formSession *session.Session, detailed bool) error {
	groups := []string{"basic"}
	if detailed {
		groups = append(groups, "detailed")
	}

	reduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: groups,
	}, sessionResponse{
		Session: formSession.ID,
		View:    formSession.Router.Current(),
		State:   formSession.Controller.State(),
	})
	if err != nil {
		c.Status(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sheriff could not reduce session state",
		})
	}

	return c.JSON(reduced)
}
