package serverutils

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JwtMiddleware authenticates API requests. Identity itself lives in an
// external provider; the engine only consumes the claims it needs: user id,
// display name, avatar and roles.
func JwtMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing token"})
	}
	tokenStr := authHeader[7:]

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil || !token.Valid {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid claims"})
	}

	ctx.Locals("user_id", claims["user_id"])
	if name, ok := claims["name"].(string); ok {
		ctx.Locals("user_name", name)
	}
	if avatar, ok := claims["avatar_url"].(string); ok {
		ctx.Locals("avatar_url", avatar)
	}
	if roles, ok := claims["roles"].([]interface{}); ok {
		strRoles := make([]string, 0, len(roles))
		for _, r := range roles {
			if s, ok := r.(string); ok {
				strRoles = append(strRoles, s)
			}
		}
		ctx.Locals("roles", strRoles)
	}
	return ctx.Next()
}
