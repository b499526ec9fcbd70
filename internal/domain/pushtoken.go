package domain

import "time"

// PushToken is one device registration. Token is globally unique; UserID is its single current owner.
type PushToken struct {
	Token        string    `json:"token" dynamodbav:"token"`
	UserID       string    `json:"user_id" dynamodbav:"user_id"`
	Platform     string    `json:"platform,omitempty" dynamodbav:"platform,omitempty"`
	RegisteredAt time.Time `json:"registered" dynamodbav:"registered_at"`
}

type RegisterTokenRequest struct {
	Token    string `json:"token" validate:"required,max=4096"`
	Platform string `json:"platform" validate:"omitempty,oneof=android ios web"`
}

// PushMessage is the payload handed to a push gateway.
type PushMessage struct {
	Title string
	Body  string
	Data  map[string]string
}

// DeliveryResult is the outcome for one token. Err is nil on success.
type DeliveryResult struct {
	Token string
	Err   error
}
