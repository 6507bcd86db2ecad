package response

import "github.com/gofiber/fiber/v3"

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Data  any    `json:"data,omitempty"`
}

// MessageBody is returned by endpoints that only confirm an action.
type MessageBody struct {
	Message string `json:"message"`
}

const (
	MessageOK                  = "ok"
	MessageBadRequest          = "bad request"
	MessageUnauthorized        = "unauthorized"
	MessageForbidden           = "forbidden"
	MessageNotFound            = "not found"
	MessageConflict            = "conflict"
	MessageRequestTooLarge     = "request entity too large"
	MessageUnprocessableEntity = "unprocessable entity"
	MessageInternalServerError = "internal server error"
	MessageError               = "error"
)

// JSON writes the resource itself as the body.
func JSON(c fiber.Ctx, status int, data any) error {
	return c.Status(NormalizeStatus(status)).JSON(data)
}

func Message(c fiber.Ctx, status int, message string) error {
	st := NormalizeStatus(status)
	return c.Status(st).JSON(MessageBody{Message: normalizeMessage(message, st)})
}

func Error(c fiber.Ctx, status int, message string, data any) error {
	st := NormalizeStatus(status)
	return c.Status(st).JSON(ErrorBody{Error: normalizeMessage(message, st), Data: data})
}

// Attachment sends a binary download.
func Attachment(c fiber.Ctx, filename, contentType string, body []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Status(fiber.StatusOK).Send(body)
}

func NormalizeStatus(status int) int {
	if status < 100 || status > 599 {
		return fiber.StatusInternalServerError
	}
	return status
}

func normalizeMessage(message string, status int) string {
	if message != "" {
		return message
	}
	return DefaultMessageForStatus(status)
}

func DefaultMessageForStatus(status int) string {
	switch status {
	case fiber.StatusOK:
		return MessageOK
	case fiber.StatusBadRequest:
		return MessageBadRequest
	case fiber.StatusUnauthorized:
		return MessageUnauthorized
	case fiber.StatusForbidden:
		return MessageForbidden
	case fiber.StatusNotFound:
		return MessageNotFound
	case fiber.StatusConflict:
		return MessageConflict
	case fiber.StatusRequestEntityTooLarge:
		return MessageRequestTooLarge
	case fiber.StatusUnprocessableEntity:
		return MessageUnprocessableEntity
	default:
		if status >= 500 {
			return MessageInternalServerError
		}
		return MessageError
	}
}
