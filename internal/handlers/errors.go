package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sol1corejz/pledgetracker/internal/apperr"
	"github.com/sol1corejz/pledgetracker/internal/logger"
)

// respondError maps err to a status. Only validation and not found messages
// reach the client; everything else gets fallback.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	code := apperr.CodeOf(err)

	if code == apperr.CodeValidation || code == apperr.CodeNotFound {
		logger.Log.Info(fallback, zap.String("path", c.Path()), zap.Error(err))
		return c.Status(code.HTTPStatus()).JSON(fiber.Map{
			"error": apperr.MessageOf(err),
		})
	}

	logger.Log.Error(fallback, zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fallback,
	})
}
