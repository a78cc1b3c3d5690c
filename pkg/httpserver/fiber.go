package httpserver

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// InitFiberServer serves a read-only API, so request bodies are capped low.
func InitFiberServer(appName string) *fiber.App {
	s := fiber.New(fiber.Config{
		AppName:               appName,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		BodyLimit:             64 * 1024,
		DisableStartupMessage: true,
	})

	s.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	s.Use(cors.New(cors.Config{
		AllowMethods: fiber.MethodGet + "," + fiber.MethodHead + "," + fiber.MethodOptions,
	}))
	s.Use(healthcheck.New(healthcheck.Config{
		LivenessEndpoint:  "/manage/health",
		ReadinessEndpoint: "/manage/ready",
	}))

	return s
}
