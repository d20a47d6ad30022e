package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperr "github.com/sudankdk/cee/internal/errors"
	"github.com/sudankdk/cee/internal/model"
	"github.com/sudankdk/cee/internal/service"
	"github.com/sudankdk/cee/internal/store"
)

type dataBody struct {
	Data any `json:"data"`
}

func (s *Server) setupRoutes(app *fiber.App) {
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/api/v1")
	v1.Get("/languages", s.languagesHandler)
	v1.Get("/templates", s.templatesHandler)
	v1.Get("/executions", s.historyHandler)
	v1.Get("/executions/:id", s.getExecutionHandler)

	limit := s.limiter.Handler()
	v1.Post("/execute", limit, s.executeHandler)
	v1.Post("/templates/:id/execute", limit, s.executeTemplateHandler)
}

func (s *Server) executeHandler(c *fiber.Ctx) error {
	var req service.ExecuteInput
	if err := c.BodyParser(&req); err != nil {
		return apperr.Newf(apperr.InvalidParams, "Invalid request body")
	}
	userID, err := actingUser(c)
	if err != nil {
		return err
	}

	rec, err := s.svc.Execute(c.UserContext(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(dataBody{Data: rec})
}

func (s *Server) executeTemplateHandler(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	userID, err := actingUser(c)
	if err != nil {
		return err
	}

	rec, err := s.svc.ExecuteTemplate(c.UserContext(), userID, id)
	if err != nil {
		return err
	}
	return c.JSON(dataBody{Data: rec})
}

func (s *Server) getExecutionHandler(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	rec, err := s.svc.GetExecution(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dataBody{Data: rec})
}

func (s *Server) historyHandler(c *fiber.Ctx) error {
	opts := store.ExecutionListOptions{
		Language: c.Query("language"),
		Limit:    c.QueryInt("limit", 50),
		Offset:   c.QueryInt("offset", 0),
	}
	userID, err := actingUser(c)
	if err != nil {
		return err
	}
	opts.UserID = userID

	recs, err := s.svc.History(c.UserContext(), opts)
	if err != nil {
		return err
	}
	if recs == nil {
		recs = []model.ExecutionRecord{}
	}
	return c.JSON(dataBody{Data: recs})
}

func (s *Server) templatesHandler(c *fiber.Ctx) error {
	tpls, err := s.svc.Templates(c.UserContext())
	if err != nil {
		return err
	}
	if tpls == nil {
		tpls = []model.Template{}
	}
	return c.JSON(dataBody{Data: tpls})
}

func (s *Server) languagesHandler(c *fiber.Ctx) error {
	return c.JSON(dataBody{Data: s.langs.List()})
}

func pathID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Newf(apperr.InvalidParams, "invalid id %q", c.Params("id"))
	}
	return id, nil
}

// actingUser reads the optional X-User-ID header.
func actingUser(c *fiber.Ctx) (*int64, error) {
	raw := c.Get(headerUserID)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apperr.Newf(apperr.InvalidParams, "invalid %s header", headerUserID)
	}
	return &id, nil
}
