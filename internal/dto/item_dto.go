package dto

import "github.com/ahmetcoskunkizilkaya/trackback-backend/internal/models"

// CreateItemRequest is read from a multipart form (or JSON without an image).
type CreateItemRequest struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Location    string `json:"location" form:"location"`
	Type        string `json:"type" form:"type"`
}

// UpdateItemRequest carries a partial update; absent fields stay nil.
type UpdateItemRequest struct {
	Title       *string `json:"title" form:"title"`
	Description *string `json:"description" form:"description"`
	Location    *string `json:"location" form:"location"`
}

type ItemResponse struct {
	Message string             `json:"message,omitempty"`
	Item    *models.ItemReport `json:"item"`
}

type CreateMessageRequest struct {
	Message  string `json:"message"`
	IsPublic *bool  `json:"isPublic"`
}

type MessageResponse struct {
	Message *models.Message `json:"message"`
}

type StatusResponse struct {
	Message string `json:"message"`
}

type MeResponse struct {
	User UserResponse `json:"user"`
}
