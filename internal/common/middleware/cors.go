package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
)

// exposedHeaders читает браузерный UI: ETag для кэша, имя файла для загрузок.
var exposedHeaders = []string{"ETag", "Content-Disposition", "Retry-After"}

// CORS разрешает указанные источники; пустой список означает любой источник.
func CORS(origins []string) fiber.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowHeaders:  []string{"Content-Type", "Accept", "If-None-Match", "Authorization"},
		AllowMethods:  []string{fiber.MethodGet, fiber.MethodPost, fiber.MethodOptions},
		ExposeHeaders: exposedHeaders,
	})
}
