package handlers

import (
	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the go-playground/validator library to implement
// Echo's Validator interface.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new CustomValidator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements the echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// CreateRoomRequest is the DTO for the room creation endpoint.
type CreateRoomRequest struct {
	RoomName string `json:"room_name" form:"room_name" validate:"required"`
}

// InjectMessageRequest is the DTO for the external injection endpoint.
// SaveToDB defaults to true when omitted, matching the expectation that
// injected messages normally become part of room history.
type InjectMessageRequest struct {
	Sender   string `json:"sender" validate:"required,min=1"`
	Content  string `json:"content" validate:"required,min=1"`
	SaveToDB *bool  `json:"save_to_db"`
}

// Persist reports whether the injected message should be written to the store.
func (r *InjectMessageRequest) Persist() bool {
	return r.SaveToDB == nil || *r.SaveToDB
}
