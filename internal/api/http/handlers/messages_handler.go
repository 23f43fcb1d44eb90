package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/school-portal/internal/api/dto"
	"github.com/spec-kit/school-portal/internal/auth"
	"github.com/spec-kit/school-portal/internal/domain"
	"github.com/spec-kit/school-portal/internal/service"
	apperrors "github.com/spec-kit/school-portal/pkg/util"
)

// MessagesHandler exposes group message endpoints.
type MessagesHandler struct {
	directory *service.DirectoryService
}

// NewMessagesHandler constructs handler.
func NewMessagesHandler(directory *service.DirectoryService) *MessagesHandler {
	return &MessagesHandler{directory: directory}
}

// List handles GET /messages/:group.
func (h *MessagesHandler) List(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Authentication required")
	}

	messages, err := h.directory.ListMessages(c.UserContext(), identity, c.Params("group"), c.QueryInt("limit"))
	if err != nil {
		return err
	}

	out := make([]dto.MessageResponse, 0, len(messages))
	for _, message := range messages {
		out = append(out, messageResponse(message))
	}
	return c.JSON(fiber.Map{"messages": out})
}

// Post handles POST /messages/:group.
func (h *MessagesHandler) Post(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Authentication required")
	}

	var req dto.PostMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	message, err := h.directory.PostMessage(c.UserContext(), identity, c.Params("group"), req.Body)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": messageResponse(*message)})
}

func messageResponse(message domain.GroupMessage) dto.MessageResponse {
	return dto.MessageResponse{
		ID:         message.ID,
		GroupName:  message.GroupName,
		AuthorID:   message.AuthorID,
		AuthorRole: string(message.AuthorRole),
		Body:       message.Body,
		PostedAt:   message.PostedAt,
	}
}
