package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sol1corejz/pledgetracker/internal/logger"
)

func RequestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else {
			status = fiber.StatusInternalServerError
		}
	}

	fields := []zap.Field{
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", status),
		zap.Duration("latency", time.Since(start)),
		zap.String("ip", c.IP()),
	}

	switch {
	case status >= fiber.StatusInternalServerError:
		logger.Log.Error("Request failed", append(fields, zap.Error(err))...)
	case c.Path() == "/health" || c.Path() == "/metrics":
		logger.Log.Debug("Request handled", fields...)
	default:
		logger.Log.Info("Request handled", fields...)
	}

	return err
}
