// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"encoding/json"

	"github.com/imaginify/imaginify/internal/model"
)

// ImageRequest is the body of image create and update requests.
type ImageRequest struct {
	Title              string          `json:"title"`
	TransformationType string          `json:"transformation_type"`
	PublicID           string          `json:"public_id"`
	SecureURL          string          `json:"secure_url"`
	Width              *int            `json:"width,omitempty"`
	Height             *int            `json:"height,omitempty"`
	Config             json.RawMessage `json:"config,omitempty"`
	TransformationURL  string          `json:"transformation_url,omitempty"`
	AspectRatio        string          `json:"aspect_ratio,omitempty"`
	Color              string          `json:"color,omitempty"`
	Prompt             string          `json:"prompt,omitempty"`
	// Path is the page to revalidate after the write.
	Path string `json:"path,omitempty"`
}

// ToImage converts the request into an image model.
func (r *ImageRequest) ToImage(id string) *model.Image {
	return &model.Image{
		ID:                 id,
		Title:              r.Title,
		TransformationType: model.TransformationType(r.TransformationType),
		PublicID:           r.PublicID,
		SecureURL:          r.SecureURL,
		Width:              r.Width,
		Height:             r.Height,
		Config:             r.Config,
		TransformationURL:  r.TransformationURL,
		AspectRatio:        r.AspectRatio,
		Color:              r.Color,
		Prompt:             r.Prompt,
	}
}

// CheckoutRequest is the body of a credit purchase.
type CheckoutRequest struct {
	Plan    string  `json:"plan"`
	Amount  float64 `json:"amount"`
	Credits int     `json:"credits"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// WebhookUserResponse acknowledges a processed lifecycle event.
type WebhookUserResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user,omitempty"`
}

// WebhookTransactionResponse acknowledges a recorded payment.
type WebhookTransactionResponse struct {
	Message     string             `json:"message"`
	Transaction *model.Transaction `json:"transaction,omitempty"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
