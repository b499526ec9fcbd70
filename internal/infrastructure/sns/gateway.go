package sns

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/projtrack-notify/internal/domain"
	"golang.org/x/sync/errgroup"
)

const (
	sendConcurrency = 10
	// endpointCacheSize caps the token to endpoint ARN cache.
	endpointCacheSize = 10000
)

// API is the subset of the SNS client the gateway uses.
type API interface {
	CreatePlatformEndpoint(ctx context.Context, in *sns.CreatePlatformEndpointInput, optFns ...func(*sns.Options)) (*sns.CreatePlatformEndpointOutput, error)
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Gateway delivers push messages through SNS mobile push. Each token is
// registered as an endpoint of one platform application, then published to.
type Gateway struct {
	client         API
	applicationARN string
	endpoints      *lru.Cache[string, string]
}

func NewGateway(client API, applicationARN string) *Gateway {
	return newGateway(client, applicationARN, endpointCacheSize)
}

func newGateway(client API, applicationARN string, cacheSize int) *Gateway {
	endpoints, err := lru.New[string, string](cacheSize)
	if err != nil {
		panic(fmt.Sprintf("sns endpoint cache: %v", err))
	}
	return &Gateway{client: client, applicationARN: applicationARN, endpoints: endpoints}
}

// NewClient builds an SNS client from the shared AWS config.
func NewClient(awsCfg aws.Config) *sns.Client {
	return sns.NewFromConfig(awsCfg)
}

// Send returns one result per token, in tokens order.
func (g *Gateway) Send(ctx context.Context, tokens []string, msg domain.PushMessage) ([]domain.DeliveryResult, error) {
	payload, err := messageJSON(msg)
	if err != nil {
		return nil, err
	}

	results := make([]domain.DeliveryResult, len(tokens))
	var eg errgroup.Group
	eg.SetLimit(sendConcurrency)
	for i, tok := range tokens {
		eg.Go(func() error {
			results[i] = domain.DeliveryResult{Token: tok, Err: g.sendOne(ctx, tok, payload)}
			return nil
		})
	}
	_ = eg.Wait()
	return results, nil
}

func (g *Gateway) sendOne(ctx context.Context, token, payload string) error {
	arn, err := g.endpointFor(ctx, token)
	if err != nil {
		return fmt.Errorf("sns endpoint: %w", err)
	}
	_, err = g.client.Publish(ctx, &sns.PublishInput{
		TargetArn:        aws.String(arn),
		Message:          aws.String(payload),
		MessageStructure: aws.String("json"),
	})
	if err == nil {
		return nil
	}
	var disabled *types.EndpointDisabledException
	if errors.As(err, &disabled) {
		g.endpoints.Remove(token)
		return fmt.Errorf("sns publish: %w: %w", domain.ErrTokenUnregistered, err)
	}
	return fmt.Errorf("sns publish: %w", err)
}

// endpointFor creates (or looks up, the call is idempotent) the platform
// endpoint for token and caches its ARN. Evicted tokens are simply created again.
func (g *Gateway) endpointFor(ctx context.Context, token string) (string, error) {
	if arn, ok := g.endpoints.Get(token); ok {
		return arn, nil
	}
	out, err := g.client.CreatePlatformEndpoint(ctx, &sns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(g.applicationARN),
		Token:                  aws.String(token),
	})
	if err != nil {
		return "", err
	}
	arn := aws.ToString(out.EndpointArn)
	g.endpoints.Add(token, arn)
	return arn, nil
}

// messageJSON renders the per-platform payload SNS expects with MessageStructure=json.
func messageJSON(msg domain.PushMessage) (string, error) {
	gcm, err := json.Marshal(map[string]any{
		"notification": map[string]string{"title": msg.Title, "body": msg.Body},
		"data":         msg.Data,
	})
	if err != nil {
		return "", err
	}
	apnsBody := map[string]any{
		"aps": map[string]any{"alert": map[string]string{"title": msg.Title, "body": msg.Body}},
	}
	for k, v := range msg.Data {
		apnsBody[k] = v
	}
	apns, err := json.Marshal(apnsBody)
	if err != nil {
		return "", err
	}
	out, err := json.Marshal(map[string]string{
		"default":      msg.Body,
		"GCM":          string(gcm),
		"APNS":         string(apns),
		"APNS_SANDBOX": string(apns),
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}
