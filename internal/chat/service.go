package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/storefrontlabs/storefront-backend/pkg/config"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
)

const systemPrompt = "You are the storefront shopping assistant. Answer questions " +
	"about products, orders, and store policies. Be concise and do not invent " +
	"prices, stock levels, or order details you were not given."

// Message is one turn of the conversation, role "user" or "assistant".
type Message struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required,max=4000"`
}

// Generator is the slice of the Gemini client the service calls.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Service answers shopper questions through the configured Gemini model.
type Service interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

type service struct {
	gen     Generator
	model   string
	timeout time.Duration
	logg    *logger.Logger
}

// NewService builds the chat service over the given content generator.
func NewService(cfg config.ChatConfig, gen Generator, logg *logger.Logger) (Service, error) {
	if gen == nil {
		return nil, fmt.Errorf("content generator required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("chat model required")
	}
	return &service{gen: gen, model: cfg.Model, timeout: cfg.Timeout, logg: logg}, nil
}

// NewGenerator dials the Gemini API with the configured key.
func NewGenerator(ctx context.Context, cfg config.ChatConfig) (Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &genaiGenerator{client: client}, nil
}

type genaiGenerator struct {
	client *genai.Client
}

func (g *genaiGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return g.client.Models.GenerateContent(ctx, model, contents, cfg)
}

func (s *service) Complete(ctx context.Context, messages []Message) (string, error) {
	contents, err := toContents(messages)
	if err != nil {
		return "", err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.gen.GenerateContent(ctx, s.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(float32(0.4)),
	})
	if err != nil {
		if s.logg != nil {
			s.logg.Error(s.logg.WithField(ctx, "model", s.model), "chat completion failed", err)
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "chat completion")
	}

	reply := strings.TrimSpace(resp.Text())
	if reply == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "chat model returned an empty reply")
	}
	return reply, nil
}

func toContents(messages []Message) ([]*genai.Content, error) {
	if len(messages) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one message is required")
	}
	if last := messages[len(messages)-1]; last.Role != "user" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "the last message must come from the user")
	}

	contents := make([]*genai.Content, 0, len(messages))
	for _, message := range messages {
		content := strings.TrimSpace(message.Content)
		if content == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "message content must not be empty")
		}
		role := genai.RoleUser
		if message.Role == "assistant" {
			role = genai.RoleModel
		} else if message.Role != "user" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "message role must be user or assistant")
		}
		contents = append(contents, genai.NewContentFromText(content, genai.Role(role)))
	}
	return contents, nil
}
