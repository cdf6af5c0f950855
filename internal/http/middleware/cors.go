package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS lets browser frontends on other origins call the upload and ask
// endpoints. Origins are not restricted; the API carries no credentials.
func CORS() fiber.Handler {
	return cors.New(cors.Config{
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, X-Request-ID",
	})
}
