package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

// ============================================================
// Logger Middleware
// ============================================================

// Logger пишет строку на запрос с тегом сервиса, IP клиента и ETag ответа.
// При quietHealth запросы к /health/ не логируются.
func Logger(service string, quietHealth bool) fiber.Handler {
	return logger.New(loggerConfig(service, quietHealth))
}

func loggerConfig(service string, quietHealth bool) logger.Config {
	return logger.Config{
		Next: func(c fiber.Ctx) bool {
			return quietHealth && strings.HasPrefix(c.Path(), "/health/")
		},
		Format:     "[${time}] [" + service + "] ${ip} ${status} - ${latency} ${method} ${path} | etag: ${respHeader:ETag}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}
}
