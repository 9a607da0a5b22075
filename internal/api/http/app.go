package http

import "github.com/gofiber/fiber/v2"

// NewApp builds the fiber app. Immutable makes path params, query values and
// parsed bodies safe to keep after the handler returns; services store them and
// the notification worker reads them asynchronously.
func NewApp(name string) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:   name,
		Immutable: true,
	})
}
