// Package rasa integrates a remote Rasa NLU server as intent classifier and
// slot-value annotator. One Client talks to the server; thin adapters expose
// it behind the nlu ports.
package rasa

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
	"gopkg.in/yaml.v3"

	errx "github.com/converseworks/convkit/internal/core/error"
	logx "github.com/converseworks/convkit/pkg/logger"
)

// Config configures the Rasa server connection.
type Config struct {
	BaseURL  string `envconfig:"RASA_URL" default:"http://localhost:5000"`
	Project  string `envconfig:"RASA_PROJECT" default:"default"`
	Language string `envconfig:"RASA_LANGUAGE" default:"en"`
	Pipeline string `envconfig:"RASA_PIPELINE" default:"spacy_sklearn"`
}

// Client is a thin HTTP client for the Rasa NLU server API.
type Client struct {
	http *resty.Client
	cfg  Config
}

// NewClient creates a client for the configured server.
func NewClient(cfg Config) *Client {
	return &Client{
		http: resty.New().SetBaseURL(cfg.BaseURL),
		cfg:  cfg,
	}
}

// ParseResponse is the server's analysis of one text.
type ParseResponse struct {
	Intent        IntentResult   `json:"intent"`
	Entities      []EntityResult `json:"entities"`
	IntentRanking []IntentResult `json:"intent_ranking"`
	Text          string         `json:"text"`
}

// IntentResult is one ranked intent hypothesis.
type IntentResult struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// EntityResult is one extracted entity with character offsets.
type EntityResult struct {
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Value      string  `json:"value"`
	Entity     string  `json:"entity"`
	Confidence float64 `json:"confidence"`
}

// TrainingData is the rasa_nlu_data payload.
type TrainingData struct {
	EntitySynonyms []EntitySynonym   `json:"entity_synonyms"`
	CommonExamples []TrainingExample `json:"common_examples"`
}

// EntitySynonym maps surface forms onto a canonical value.
type EntitySynonym struct {
	Value    string   `json:"value"`
	Synonyms []string `json:"synonyms"`
}

// TrainingExample is one labelled text with its entities.
type TrainingExample struct {
	Text     string           `json:"text"`
	Intent   string           `json:"intent"`
	Entities []TrainingEntity `json:"entities"`
}

// TrainingEntity marks an entity span inside a training example.
type TrainingEntity struct {
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Value  string `json:"value"`
	Entity string `json:"entity"`
}

// StatusResponse lists the server's projects and their models.
type StatusResponse struct {
	AvailableProjects map[string]ProjectStatus `json:"available_projects"`
}

// ProjectStatus is one project entry in the status response.
type ProjectStatus struct {
	Status          string   `json:"status"`
	AvailableModels []string `json:"available_models"`
}

// Parse sends the text to the server and returns its analysis.
func (c *Client) Parse(ctx context.Context, text string) (*ParseResponse, error) {
	var out ParseResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"q": text, "project": c.cfg.Project}).
		SetResult(&out).
		Post("/parse")
	if err != nil {
		return nil, fmt.Errorf("parse request: %w", err)
	}
	if resp.IsError() {
		return nil, errx.GenerationFailure("rasa parse returned %s: %s", resp.Status(), resp.String())
	}
	return &out, nil
}

// Train uploads training data and blocks until the server answers. The wire
// format is a YAML header carrying language and pipeline with the
// rasa_nlu_data payload embedded as JSON, which is what the server's trainer
// accepts.
func (c *Client) Train(ctx context.Context, data TrainingData) error {
	body, err := trainRequestBody(c.cfg.Language, c.cfg.Pipeline, data)
	if err != nil {
		return err
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-yml").
		SetQueryParam("project", c.cfg.Project).
		SetBody(body).
		Post("/train")
	if err != nil {
		return fmt.Errorf("train request: %w", err)
	}
	if resp.IsError() {
		return errx.GenerationFailure("rasa train returned %s: %s", resp.Status(), resp.String())
	}
	logx.Info().Str("project", c.cfg.Project).Int("examples", len(data.CommonExamples)).
		Msg("rasa model trained")
	return nil
}

// Status queries the server's project inventory.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var out StatusResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/status")
	if err != nil {
		return nil, fmt.Errorf("status request: %w", err)
	}
	if resp.IsError() {
		return nil, errx.GenerationFailure("rasa status returned %s: %s", resp.Status(), resp.String())
	}
	return &out, nil
}

func trainRequestBody(language, pipeline string, data TrainingData) ([]byte, error) {
	header, err := yaml.Marshal(struct {
		Language string `yaml:"language"`
		Pipeline string `yaml:"pipeline"`
	}{language, pipeline})
	if err != nil {
		return nil, errx.Fatal(err, "encode train header")
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, errx.Fatal(err, "encode train data")
	}
	return append(header, []byte(fmt.Sprintf("\ndata: {\"rasa_nlu_data\": %s }", payload))...), nil
}
