package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/bodega-api/internal/application/dto"
	"github.com/jhoicas/bodega-api/internal/domain/entity"
)

// RequirePermission corta con 403 si el rol del token no tiene la acción en la matriz de
// permisos. Debe usarse DESPUÉS de AuthMiddleware.
func RequirePermission(action entity.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !entity.Can(GetRole(c), action) {
			return forbidden(c, action)
		}
		return c.Next()
	}
}

func forbidden(c *fiber.Ctx, action entity.Action) error {
	return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
		Code:    "FORBIDDEN",
		Message: "el rol '" + GetRole(c) + "' no puede ejecutar " + string(action),
	})
}
