package controller

import (
	"retroboard-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// localUserId reads the authenticated user id put in Locals by JwtMiddleware.
func localUserId(ctx *fiber.Ctx) uuid.UUID {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	return userId
}

// localUser assembles the identity snapshot from the token claims.
func localUser(ctx *fiber.Ctx) store.UserSnapshot {
	user := store.UserSnapshot{Id: localUserId(ctx)}
	if name, ok := ctx.Locals("user_name").(string); ok {
		user.Name = name
	}
	if avatar, ok := ctx.Locals("avatar_url").(string); ok {
		user.AvatarURL = avatar
	}
	if roles, ok := ctx.Locals("roles").([]string); ok {
		user.Roles = roles
	}
	return user
}
