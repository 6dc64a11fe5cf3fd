package controller

import (
	"retroboard-be/internal/dto"
	"retroboard-be/internal/pkg/serverutils"
	"retroboard-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IBoardController interface {
	RegisterRoutes(r fiber.Router)
	Snapshot(ctx *fiber.Ctx) error
	CreateItem(ctx *fiber.Ctx) error
	UpdateItem(ctx *fiber.Ctx) error
	DeleteItem(ctx *fiber.Ctx) error
	CreateGroup(ctx *fiber.Ctx) error
	AddItemToGroup(ctx *fiber.Ctx) error
	SeparateItem(ctx *fiber.Ctx) error
	Reorder(ctx *fiber.Ctx) error
	MarkDiscussed(ctx *fiber.Ctx) error
}

type boardController struct {
	boardService service.IBoardService
}

func NewBoardController(boardService service.IBoardService) IBoardController {
	return &boardController{
		boardService: boardService,
	}
}

func (c *boardController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/session/v1/:sessionId/board")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.Snapshot)
	h.Post("item", c.CreateItem)
	h.Put("item/:itemId", c.UpdateItem)
	h.Delete("item/:itemId", c.DeleteItem)
	h.Post("group", c.CreateGroup)
	h.Post("group/add", c.AddItemToGroup)
	h.Post("item/:itemId/separate", c.SeparateItem)
	h.Put("reorder", c.Reorder)
	h.Put("discussed", c.MarkDiscussed)
}

func (c *boardController) Snapshot(ctx *fiber.Ctx) error {
	sessionId, _ := uuid.Parse(ctx.Params("sessionId"))
	userId := localUserId(ctx)

	res, err := c.boardService.Snapshot(ctx.Context(), sessionId, userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get board", res))
}

func (c *boardController) CreateItem(ctx *fiber.Ctx) error {
	sessionId, _ := uuid.Parse(ctx.Params("sessionId"))
	user := localUser(ctx)

	var req dto.CreateItemRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.boardService.CreateItem(ctx.Context(), sessionId, user, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create item", res))
}

func (c *boardController) UpdateItem(ctx *fiber.Ctx) error {
	sessionId, _ := uuid.Parse(ctx.Params("sessionId"))
	userId := localUserId(ctx)

	var req dto.UpdateItemRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	req.Id, _ = uuid.Parse(ctx.Params("itemId"))

	if err := c.boardService.UpdateItem(ctx.Context(), sessionId, userId, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success update item", nil))
}

func (c *boardController) DeleteItem(ctx *fiber.Ctx) error {
	sessionId, _ := uuid.Parse(ctx.Params("sessionId"))
	itemId, _ := uuid.Parse(ctx.Params("itemId"))
	userId := localUserId(ctx)

	if err := c.boardService.DeleteItem(ctx.Context(), sessionId, userId, itemId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete item", nil))
}

func (c *boardController) CreateGroup(ctx *fiber.Ctx) error {
	sessionId, _ := uuid.Parse(ctx.Params("sessionId"))

	var req dto.CreateGroupRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.boardService.CreateGroup(ctx.Context(), sessionId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create group", res))
}

func (c *boardController) AddItemToGroup(ctx *fiber.Ctx) error {
	sessionId, _ := uuid.Parse(ctx.Params("sessionId"))

	var req dto.GroupMembershipRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.boardService.AddItemToGroup(ctx.Context(), sessionId, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success add item to group", nil))
}

func (c *boardController) SeparateItem(ctx *fiber.Ctx) error {
	sessionId, _ := uuid.Parse(ctx.Params("sessionId"))
	itemId, _ := uuid.Parse(ctx.Params("itemId"))

	if err := c.boardService.SeparateItem(ctx.Context(), sessionId, itemId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success separate item", nil))
}

func (c *boardController) Reorder(ctx *fiber.Ctx) error {
	sessionId, _ := uuid.Parse(ctx.Params("sessionId"))

	var req dto.ReorderRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.boardService.Reorder(ctx.Context(), sessionId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success reorder board", res))
}

func (c *boardController) MarkDiscussed(ctx *fiber.Ctx) error {
	sessionId, _ := uuid.Parse(ctx.Params("sessionId"))

	var req dto.MarkDiscussedRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.boardService.MarkDiscussed(ctx.Context(), sessionId, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success mark discussed", nil))
}
