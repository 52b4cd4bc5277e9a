package handlers

import (
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/trackback-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type MessageHandler struct {
	messageService *services.MessageService
}

func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (h *MessageHandler) ListByReport(c *fiber.Ctx) error {
	id, ok := reportID(c, "reportId")
	if !ok {
		return c.JSON([]struct{}{})
	}

	messages, err := h.messageService.ListByReport(c.UserContext(), id)
	if err != nil {
		return respondError(c, "list_messages", err)
	}
	return c.JSON(messages)
}

func (h *MessageHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := reportID(c, "reportId")
	if !ok {
		return respondError(c, "create_message", services.ErrReportNotFound)
	}

	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	msg, err := h.messageService.Create(c.UserContext(), id, userID, req.Message, req.IsPublic)
	if err != nil {
		return respondError(c, "create_message", err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.MessageResponse{Message: msg})
}

func (h *MessageHandler) Delete(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, "delete_message", services.ErrMessageNotFound)
	}

	if err := h.messageService.Delete(c.UserContext(), id, userID); err != nil {
		return respondError(c, "delete_message", err)
	}

	return c.JSON(dto.StatusResponse{Message: "Message deleted"})
}
