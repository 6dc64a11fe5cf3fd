package controller

import (
	"retroboard-be/internal/pkg/serverutils"
	"retroboard-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IPresenceController interface {
	RegisterRoutes(r fiber.Router)
	Heartbeat(ctx *fiber.Ctx) error
	Leave(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
}

type presenceController struct {
	presenceService service.IPresenceService
}

func NewPresenceController(presenceService service.IPresenceService) IPresenceController {
	return &presenceController{
		presenceService: presenceService,
	}
}

func (c *presenceController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/session/v1/:sessionId/presence")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.List)
	h.Post("heartbeat", c.Heartbeat)
	h.Delete("", c.Leave)
}

func (c *presenceController) Heartbeat(ctx *fiber.Ctx) error {
	sessionId, _ := uuid.Parse(ctx.Params("sessionId"))
	user := localUser(ctx)

	if err := c.presenceService.Heartbeat(ctx.Context(), sessionId, user); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success heartbeat", nil))
}

func (c *presenceController) Leave(ctx *fiber.Ctx) error {
	sessionId, _ := uuid.Parse(ctx.Params("sessionId"))
	userId := localUserId(ctx)

	if err := c.presenceService.Leave(ctx.Context(), sessionId, userId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success leave", nil))
}

func (c *presenceController) List(ctx *fiber.Ctx) error {
	sessionId, _ := uuid.Parse(ctx.Params("sessionId"))

	res, err := c.presenceService.List(ctx.Context(), sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get connected users", res))
}
