package fcm

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/projtrack-notify/internal/config"
	"github.com/projtrack-notify/internal/domain"
	"google.golang.org/api/option"
)

// maxMulticastTokens is FCM's per-request token limit.
const maxMulticastTokens = 500

// multicastSender is the part of *messaging.Client the gateway uses.
type multicastSender interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// Gateway delivers push messages through Firebase Cloud Messaging.
type Gateway struct {
	client multicastSender
}

// NewGateway builds a Firebase app from the configured service account and
// returns a gateway around its messaging client.
func NewGateway(ctx context.Context, cfg config.PushConfig) (*Gateway, error) {
	var opts []option.ClientOption
	if cfg.FCMCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FCMCredentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FCMProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase messaging: %w", err)
	}
	return &Gateway{client: client}, nil
}

func newGateway(client multicastSender) *Gateway {
	return &Gateway{client: client}
}

// Send returns one result per token, in tokens order. A failed request marks
// every token in its chunk failed; it is never returned as an error.
func (g *Gateway) Send(ctx context.Context, tokens []string, msg domain.PushMessage) ([]domain.DeliveryResult, error) {
	results := make([]domain.DeliveryResult, 0, len(tokens))
	for start := 0; start < len(tokens); start += maxMulticastTokens {
		chunk := tokens[start:min(start+maxMulticastTokens, len(tokens))]
		resp, err := g.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens: chunk,
			Notification: &messaging.Notification{
				Title: msg.Title,
				Body:  msg.Body,
			},
			Data: msg.Data,
		})
		if err != nil {
			for _, tok := range chunk {
				results = append(results, domain.DeliveryResult{Token: tok, Err: fmt.Errorf("fcm multicast: %w", err)})
			}
			continue
		}
		for i, tok := range chunk {
			res := domain.DeliveryResult{Token: tok}
			switch {
			case i >= len(resp.Responses):
				res.Err = fmt.Errorf("fcm: no response for token")
			case !resp.Responses[i].Success:
				res.Err = deliveryError(resp.Responses[i].Error)
			}
			results = append(results, res)
		}
	}
	return results, nil
}

// deliveryError flags only token-level rejections as unregistered; payload
// errors such as INVALID_ARGUMENT are reported as plain failures.
func deliveryError(err error) error {
	switch {
	case err == nil:
		return fmt.Errorf("fcm: delivery failed")
	case messaging.IsRegistrationTokenNotRegistered(err), messaging.IsSenderIDMismatch(err):
		return fmt.Errorf("fcm: %w: %w", domain.ErrTokenUnregistered, err)
	}
	return fmt.Errorf("fcm: %w", err)
}
