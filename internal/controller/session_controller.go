package controller

import (
	"retroboard-be/internal/dto"
	"retroboard-be/internal/pkg/serverutils"
	"retroboard-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	NextStep(ctx *fiber.Ctx) error
	StartTimer(ctx *fiber.Ctx) error
	StopTimer(ctx *fiber.Ctx) error
	TimerStatus(ctx *fiber.Ctx) error
	TimerLike(ctx *fiber.Ctx) error
}

type sessionController struct {
	sessionService service.ISessionService
}

func NewSessionController(sessionService service.ISessionService) ISessionController {
	return &sessionController{
		sessionService: sessionService,
	}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/session/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Create)
	h.Get(":sessionId", c.Show)
	h.Post(":sessionId/next-step", c.NextStep)
	// Alias: completing is advancing out of the final working phase.
	h.Post(":sessionId/complete", c.NextStep)
	h.Get(":sessionId/timer", c.TimerStatus)
	h.Post(":sessionId/timer/start", c.StartTimer)
	h.Post(":sessionId/timer/stop", c.StopTimer)
	h.Put(":sessionId/timer/like", c.TimerLike)
}

func (c *sessionController) Create(ctx *fiber.Ctx) error {
	userId := localUserId(ctx)

	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.Create(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *sessionController) Show(ctx *fiber.Ctx) error {
	sessionId, _ := uuid.Parse(ctx.Params("sessionId"))

	res, err := c.sessionService.Show(ctx.Context(), sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session", res))
}

func (c *sessionController) NextStep(ctx *fiber.Ctx) error {
	sessionId, _ := uuid.Parse(ctx.Params("sessionId"))

	res, err := c.sessionService.NextStep(ctx.Context(), sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success advance session", res))
}

func (c *sessionController) StartTimer(ctx *fiber.Ctx) error {
	sessionId, _ := uuid.Parse(ctx.Params("sessionId"))

	var req dto.StartTimerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.sessionService.StartTimer(ctx.Context(), sessionId, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success start timer", nil))
}

func (c *sessionController) StopTimer(ctx *fiber.Ctx) error {
	sessionId, _ := uuid.Parse(ctx.Params("sessionId"))

	if err := c.sessionService.StopTimer(ctx.Context(), sessionId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success stop timer", nil))
}

func (c *sessionController) TimerStatus(ctx *fiber.Ctx) error {
	sessionId, _ := uuid.Parse(ctx.Params("sessionId"))

	res, err := c.sessionService.TimerStatus(ctx.Context(), sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get timer status", res))
}

func (c *sessionController) TimerLike(ctx *fiber.Ctx) error {
	sessionId, _ := uuid.Parse(ctx.Params("sessionId"))
	userId := localUserId(ctx)

	var req dto.TimerLikeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := c.sessionService.TimerLikeUpdate(ctx.Context(), sessionId, userId, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success update timer like", nil))
}
