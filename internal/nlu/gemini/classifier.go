// Package gemini implements an LLM-backed intent classifier on Google's
// Gemini models via the Eino chat-model component. Training is in-context:
// the labelled examples become few-shot messages in the classification
// prompt rather than model weights.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	geminimodel "github.com/cloudwego/eino-ext/components/model/gemini"

	errx "github.com/converseworks/convkit/internal/core/error"
	"github.com/converseworks/convkit/internal/dialogue"
	"github.com/converseworks/convkit/internal/nlu"
	logx "github.com/converseworks/convkit/pkg/logger"
)

const modelFile = "model.json"

// unknownLabel is what the prompt instructs the model to answer when no
// trained intent applies.
const unknownLabel = "NONE"

const systemPrompt = `You are an intent classifier for a conversational agent.
Given a user message, answer with exactly one label from this list:
%s
Answer with %s if none of the labels applies. Output only the label.`

// Config configures the Gemini client and model.
type Config struct {
	APIKey      string  `envconfig:"GEMINI_API_KEY"`
	BaseURL     string  `envconfig:"GEMINI_BASE_URL"`
	Model       string  `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	Temperature float32 `envconfig:"GEMINI_TEMPERATURE" default:"0.0"`
	MaxTokens   int     `envconfig:"GEMINI_MAX_TOKENS" default:"64"`
}

type example struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Classifier assigns intents by prompting a Gemini chat model with the
// trained label inventory and examples. Responses outside the inventory map
// to a nil intent.
type Classifier struct {
	chatModel einomodel.BaseChatModel
	cfg       Config

	labels   []string
	examples []example
	intents  map[string]*dialogue.Intent
}

var _ nlu.IntentClassifier = (*Classifier)(nil)

// NewClassifier creates a classifier with its own Gemini client.
func NewClassifier(ctx context.Context, cfg Config) (*Classifier, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	chatModel, err := geminimodel.NewChatModel(ctx, &geminimodel.Config{
		Client:      client,
		Model:       cfg.Model,
		Temperature: &cfg.Temperature,
		MaxTokens:   &cfg.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini chat model")
		return nil, fmt.Errorf("error creating Gemini chat model: %w", err)
	}
	return NewClassifierWithModel(chatModel, cfg), nil
}

// NewClassifierWithModel wraps an existing chat model.
func NewClassifierWithModel(chatModel einomodel.BaseChatModel, cfg Config) *Classifier {
	return &Classifier{
		chatModel: chatModel,
		cfg:       cfg,
		intents:   make(map[string]*dialogue.Intent),
	}
}

// Train records the label inventory and keeps the labelled texts as few-shot
// examples. Texts and intents must be parallel.
func (c *Classifier) Train(_ context.Context, texts []string, intents []*dialogue.Intent) error {
	if len(texts) != len(intents) {
		return errx.Invalid("length mismatch: %d texts vs %d intents", len(texts), len(intents))
	}

	c.labels = c.labels[:0]
	c.examples = make([]example, 0, len(texts))
	c.intents = make(map[string]*dialogue.Intent, len(intents))
	for i, intent := range intents {
		if intent == nil {
			return errx.Invalid("nil intent at index %d", i)
		}
		if _, ok := c.intents[intent.Label()]; !ok {
			c.intents[intent.Label()] = intent
			c.labels = append(c.labels, intent.Label())
		}
		c.examples = append(c.examples, example{Text: texts[i], Label: intent.Label()})
	}
	return nil
}

// Classify prompts the model with the inventory and examples and maps the
// answer back onto a trained intent. An answer outside the inventory yields
// a nil intent.
func (c *Classifier) Classify(ctx context.Context, text string) (*dialogue.Intent, error) {
	if len(c.labels) == 0 {
		return nil, errx.Invalid("classifier is not trained")
	}

	messages, err := c.buildPrompt(ctx, text)
	if err != nil {
		return nil, err
	}
	resp, err := c.chatModel.Generate(ctx, messages)
	if err != nil {
		logx.Error().Err(err).Msg("Gemini classification failed")
		return nil, errx.Fatal(err, "classify with gemini")
	}

	label := strings.TrimSpace(resp.Content)
	intent, ok := c.intents[label]
	if !ok {
		logx.Debug().Str("label", label).Msg("model answered outside the intent inventory")
		return nil, nil
	}
	return intent, nil
}

func (c *Classifier) buildPrompt(ctx context.Context, text string) ([]*schema.Message, error) {
	system := fmt.Sprintf(systemPrompt, strings.Join(c.labels, "\n"), unknownLabel)

	shots := make([]*schema.Message, 0, 2*len(c.examples))
	for _, ex := range c.examples {
		shots = append(shots,
			schema.UserMessage(ex.Text),
			schema.AssistantMessage(ex.Label, nil),
		)
	}

	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("system_messages", false),
		schema.MessagesPlaceholder("examples", true),
		schema.MessagesPlaceholder("user_messages", false),
	)
	messages, err := tpl.Format(ctx, map[string]any{
		"system_messages": []*schema.Message{schema.SystemMessage(system)},
		"examples":        shots,
		"user_messages":   []*schema.Message{schema.UserMessage(text)},
	})
	if err != nil {
		return nil, fmt.Errorf("format classification prompt: %w", err)
	}
	return messages, nil
}

// Save persists the label inventory and the few-shot examples. The chat
// model itself is remote state and is not saved.
func (c *Classifier) Save(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return errx.Fatal(err, "create classifier directory")
	}
	data, err := json.MarshalIndent(struct {
		Labels   []string  `json:"labels"`
		Examples []example `json:"examples"`
		Model    string    `json:"model"`
	}{c.labels, c.examples, c.cfg.Model}, "", "  ")
	if err != nil {
		return errx.Fatal(err, "encode classifier state")
	}
	if err := os.WriteFile(filepath.Join(path, modelFile), data, 0o644); err != nil {
		return errx.Fatal(err, "write classifier state")
	}
	return nil
}

// Load restores the label inventory and examples written by Save.
func (c *Classifier) Load(path string) error {
	data, err := os.ReadFile(filepath.Join(path, modelFile))
	if err != nil {
		if os.IsNotExist(err) {
			return errx.NotFound("classifier at %s: %v", path, err)
		}
		return errx.Fatal(err, "read classifier state")
	}
	var state struct {
		Labels   []string  `json:"labels"`
		Examples []example `json:"examples"`
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return errx.Fatal(err, "decode classifier state")
	}
	c.labels = state.Labels
	c.examples = state.Examples
	c.intents = make(map[string]*dialogue.Intent, len(state.Labels))
	for _, label := range state.Labels {
		c.intents[label] = dialogue.NewIntent(label)
	}
	return nil
}
