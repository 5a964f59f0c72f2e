package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-widget/internal/store"
	"github.com/i474232898/weather-widget/internal/widget"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
// newController builds the throwaway widget used by the one-shot endpoint.
func RegisterRoutes(app *fiber.App, sessions *store.MemoryStore, newController func() *widget.Controller) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather", func(c *fiber.Ctx) error {
		return runSearch(c, newController(), c.Query("q"))
	})

	v1.Post("/widgets", func(c *fiber.Ctx) error {
		sess := sessions.Create()
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":   sess.ID,
			"view": sess.Controller.View(),
		})
	})

	v1.Get("/widgets/:id", func(c *fiber.Ctx) error {
		sess, err := lookupSession(c, sessions)
		if err != nil {
			return err
		}
		return c.JSON(sess.Controller.View())
	})

	v1.Post("/widgets/:id/search", func(c *fiber.Ctx) error {
		sess, err := lookupSession(c, sessions)
		if err != nil {
			return err
		}

		var req searchRequest
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return runSearch(c, sess.Controller, req.Query)
	})

	v1.Delete("/widgets/:id", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := sessions.Delete(id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "widget not found")
			}
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// searchRequest holds the submitted location text. It may arrive as a JSON
// or form body, or as the `q` query parameter.
type searchRequest struct {
	Query string `json:"query" form:"query"`
}

func (r *searchRequest) bind(c *fiber.Ctx) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(r); err != nil {
			return errors.New("request body must be JSON or form encoded with a query field")
		}
	}
	if r.Query == "" {
		r.Query = c.Query("q")
	}
	return nil
}

func lookupSession(c *fiber.Ctx, sessions *store.MemoryStore) (*store.Session, error) {
	id := c.Params("id")
	if err := validate.Var(id, "required,uuid"); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid widget id")
	}

	sess, err := sessions.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "widget not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "failed to load widget")
	}
	return sess, nil
}

// runSearch submits query to ctrl and renders the resulting view. The view is
// rendered even on failure, since the error line is part of the widget.
func runSearch(c *fiber.Ctx, ctrl *widget.Controller, query string) error {
	st, err := ctrl.Submit(c.UserContext(), query)
	return c.Status(statusFor(err)).JSON(ctrl.ViewOf(st))
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.Is(err, widget.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, widget.ErrSuperseded):
		return fiber.StatusConflict
	case errors.Is(err, widget.ErrFetch):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
