package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// validate is shared by every handler; struct tags on the request DTOs
// carry the rules.
var validate = validator.New()

// fail writes the ROMA error envelope. errorCode is omitted when empty so
// responses without a machine-readable code stay byte-compatible with the
// web client's expectations.
func fail(c echo.Context, status int, message, errorCode string) error {
	body := echo.Map{"success": false, "message": message}
	if errorCode != "" {
		body["errorCode"] = errorCode
	}
	return c.JSON(status, body)
}
