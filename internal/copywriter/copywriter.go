// Package copywriter talks to an OpenAI-compatible completion API to turn
// structured property facts into listing marketing copy.
package copywriter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// ToneSpanish forces the whole response into Spanish. Other tones are
	// free-text style labels folded into the prompt.
	ToneSpanish = "en español"

	// DefaultTitle is used when no usable headline can be extracted from
	// the generated text.
	DefaultTitle = "New Property Listing"

	// maxTitleLength is the longest first line accepted as a headline.
	maxTitleLength = 90
)

// Facts are the structured property details the prompt is built from.
type Facts struct {
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Price     string `json:"price"`
	Beds      string `json:"beds"`
	Baths     string `json:"baths"`
	Sqft      string `json:"sqft"`
	YearBuilt string `json:"yearBuilt"`
	Features  string `json:"features"`
	Notes     string `json:"descriptionInput"`
	Tone      string `json:"tone"`
}

// Result is the generated copy.
type Result struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Client calls the completion API. With no API key configured it degrades
// to a clearly-labeled placeholder so the rest of the pipeline stays
// exercisable without a credential.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	log        logrus.FieldLogger
}

// NewClient creates a copywriter client. apiKey may be empty.
func NewClient(apiKey, baseURL, model string, timeout time.Duration, logger logrus.FieldLogger) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.WithField("component", "copywriter"),
	}
}

// Enabled reports whether a credential is configured. HTTP handlers use
// this to answer 503 instead of producing placeholder copy for clients.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate produces listing copy for the given facts.
func (c *Client) Generate(ctx context.Context, facts Facts) (Result, error) {
	if !c.Enabled() {
		c.log.Warn("No API key configured, returning placeholder copy")
		return placeholderResult(), nil
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: buildPrompt(facts)},
		},
		Temperature: 0.8,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("failed to build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.log.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(detail),
		}).Error("Completion API returned an error")
		return Result{}, fmt.Errorf("completion API returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Result{}, fmt.Errorf("failed to decode completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return Result{}, fmt.Errorf("completion response contained no choices")
	}

	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	return Result{
		Title:       TitleFromText(text),
		Description: text,
	}, nil
}

// buildPrompt folds the property facts and tone into one instruction.
func buildPrompt(f Facts) string {
	var b strings.Builder
	b.WriteString("Write real-estate listing copy for the property below. ")
	b.WriteString("Start with a catchy one-line headline on its own line, then the full description.\n\n")

	fields := []struct{ label, value string }{
		{"Address", f.Address},
		{"City", f.City},
		{"State", f.State},
		{"Price", f.Price},
		{"Bedrooms", f.Beds},
		{"Bathrooms", f.Baths},
		{"Square feet", f.Sqft},
		{"Year built", f.YearBuilt},
		{"Features", f.Features},
	}
	for _, field := range fields {
		if field.value != "" {
			fmt.Fprintf(&b, "%s: %s\n", field.label, field.value)
		}
	}
	if f.Notes != "" {
		fmt.Fprintf(&b, "\nAgent notes: %s\n", f.Notes)
	}

	switch {
	case f.Tone == ToneSpanish:
		b.WriteString("\nWrite the entire response in Spanish.")
	case f.Tone != "":
		fmt.Fprintf(&b, "\nUse a %s tone.", f.Tone)
	}
	return b.String()
}

// TitleFromText extracts a headline from generated copy.
//
// Policy: the first non-empty line, with surrounding quote characters
// stripped, becomes the title. A line longer than 90 characters is treated
// as body text rather than a headline, and the extraction falls back to
// DefaultTitle, as it does for empty input.
func TitleFromText(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.Trim(line, `"'“”‘’`)
		line = strings.TrimSpace(line)
		if line == "" || len([]rune(line)) > maxTitleLength {
			return DefaultTitle
		}
		return line
	}
	return DefaultTitle
}

func placeholderResult() Result {
	return Result{
		Title: "Placeholder Listing Title",
		Description: "[Placeholder copy] No copywriter credential is configured, so this text " +
			"stands in for generated listing copy. Set OPENAI_API_KEY (or copywriter.api_key " +
			"in config.yaml) to generate real titles and descriptions.",
	}
}
