package controller

import (
	"retroboard-be/internal/dto"
	"retroboard-be/internal/pkg/serverutils"
	"retroboard-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IVoteController interface {
	RegisterRoutes(r fiber.Router)
	Vote(ctx *fiber.Ctx) error
	Aggregate(ctx *fiber.Ctx) error
}

type voteController struct {
	votingService service.IVotingService
}

func NewVoteController(votingService service.IVotingService) IVoteController {
	return &voteController{
		votingService: votingService,
	}
}

func (c *voteController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/session/v1/:sessionId")
	h.Use(serverutils.JwtMiddleware)
	h.Put("vote", c.Vote)
	h.Get("votes/aggregate", c.Aggregate)
}

func (c *voteController) Vote(ctx *fiber.Ctx) error {
	sessionId, _ := uuid.Parse(ctx.Params("sessionId"))
	userId := localUserId(ctx)

	var req dto.VoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.votingService.Vote(ctx.Context(), sessionId, userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update vote", res))
}

func (c *voteController) Aggregate(ctx *fiber.Ctx) error {
	sessionId, _ := uuid.Parse(ctx.Params("sessionId"))

	res, err := c.votingService.Aggregate(ctx.Context(), sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success aggregate votes", res))
}
