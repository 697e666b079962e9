package controller

import (
	"errors"

	"itinvent-bot/internal/dto"
	"itinvent-bot/internal/pkg/serverutils"
	"itinvent-bot/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IBotController interface {
	RegisterRoutes(r fiber.Router)
	HandleEvent(ctx *fiber.Ctx) error
	ListDatabases(ctx *fiber.Ctx) error
}

type botController struct {
	service service.IBotService
	auth    fiber.Handler
}

func NewBotController(service service.IBotService, auth fiber.Handler) IBotController {
	return &botController{service: service, auth: auth}
}

func (c *botController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/api/bot")
	h.Use(c.auth)
	h.Post("/events", c.HandleEvent)
	h.Get("/databases", c.ListDatabases)
}

func (c *botController) HandleEvent(ctx *fiber.Ctx) error {
	var req dto.BotEventRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.HandleEvent(ctx.UserContext(), &req)
	if err != nil {
		if errors.Is(err, service.ErrBadEvent) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Event handled", res))
}

func (c *botController) ListDatabases(ctx *fiber.Ctx) error {
	res := c.service.ListDatabases(ctx.UserContext(), ctx.Query("user_id"))
	return ctx.JSON(serverutils.SuccessResponse("Success get databases", res))
}
