package model

import (
	"encoding/json"
	"time"
)

// TransformationType is the kind of edit applied to an image.
type TransformationType string

const (
	TransformationRestore          TransformationType = "restore"
	TransformationRemoveBackground TransformationType = "removeBackground"
	TransformationFill             TransformationType = "fill"
	TransformationRemove           TransformationType = "remove"
	TransformationRecolor          TransformationType = "recolor"
)

// TransformationTypes lists the supported transformations.
var TransformationTypes = []TransformationType{
	TransformationRestore,
	TransformationRemoveBackground,
	TransformationFill,
	TransformationRemove,
	TransformationRecolor,
}

// IsValid checks if the transformation type is supported.
func (t TransformationType) IsValid() bool {
	for _, known := range TransformationTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Author is the subset of user fields joined onto image reads.
type Author struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	ClerkID   string `json:"clerk_id"`
}

// Image is a persisted transformation record.
type Image struct {
	ID                 string             `json:"id"`
	Title              string             `json:"title"`
	TransformationType TransformationType `json:"transformation_type"`
	PublicID           string             `json:"public_id"`
	SecureURL          string             `json:"secure_url"`
	Width              *int               `json:"width,omitempty"`
	Height             *int               `json:"height,omitempty"`
	Config             json.RawMessage    `json:"config,omitempty"`
	TransformationURL  string             `json:"transformation_url,omitempty"`
	AspectRatio        string             `json:"aspect_ratio,omitempty"`
	Color              string             `json:"color,omitempty"`
	Prompt             string             `json:"prompt,omitempty"`
	AuthorID           string             `json:"author_id,omitempty"`
	Author             *Author            `json:"author,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// ImagePage is one page of an image listing.
type ImagePage struct {
	Data      []*Image `json:"data"`
	TotalPage int      `json:"totalPage"`
}
