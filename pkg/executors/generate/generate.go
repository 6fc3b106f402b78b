// Package generate implements the generation node types on top of the OpenAI API.
//
// A Generator built with a nil client answers with deterministic mock results,
// which keeps workflows runnable offline.
package generate

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/aretw0/flowcanvas/internal/logging"
	"github.com/aretw0/flowcanvas/pkg/catalog"
	"github.com/aretw0/flowcanvas/pkg/executors"
	"github.com/aretw0/flowcanvas/pkg/registry"
)

// Config holds the defaults used when a node does not pick a model.
type Config struct {
	TextModel   string
	ImageModel  string
	SpeechModel string
	// OutputDir receives generated audio files.
	OutputDir string
}

// TextConfig is the data of a generate-text node.
type TextConfig struct {
	Model       string  `mapstructure:"model"`
	System      string  `mapstructure:"system"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// ImageConfig is the data of a generate-image node.
type ImageConfig struct {
	Model string `mapstructure:"model"`
	Size  string `mapstructure:"size"`
}

// SpeechConfig is the data of a generate-speech node.
type SpeechConfig struct {
	Model string  `mapstructure:"model"`
	Voice string  `mapstructure:"voice"`
	Speed float64 `mapstructure:"speed"`
}

// Generator executes generate-* nodes.
type Generator struct {
	client *openai.Client
	cfg    Config
}

// NewClient builds an OpenAI client. An empty baseURL keeps the public endpoint.
func NewClient(apiKey, baseURL string) *openai.Client {
	conf := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		conf.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(conf)
}

// New returns a generator. client may be nil for mock mode.
func New(client *openai.Client, cfg Config) *Generator {
	if cfg.TextModel == "" {
		cfg.TextModel = openai.GPT4oMini
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = openai.CreateImageModelDallE3
	}
	if cfg.SpeechModel == "" {
		cfg.SpeechModel = string(openai.TTSModel1)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = os.TempDir()
	}
	return &Generator{client: client, cfg: cfg}
}

// Register adds the generate-* executors.
func (g *Generator) Register(r *registry.Registry) {
	r.Register(catalog.TypeGenerateText, g.Text)
	r.Register(catalog.TypeGenerateImage, g.Image)
	r.Register(catalog.TypeGenerateSpeech, g.Speech)
}

func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func requireString(inputs map[string]any, key string) (string, error) {
	v, ok := inputs[key]
	if !ok || v == nil {
		return "", fmt.Errorf("input %q is not connected", key)
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return "", fmt.Errorf("input %q is empty", key)
	}
	return s, nil
}

// Text completes the "prompt" input and emits "text".
func (g *Generator) Text(ctx context.Context, inputs, data map[string]any) (map[string]any, error) {
	var cfg TextConfig
	if err := executors.Decode(data, &cfg); err != nil {
		return nil, err
	}
	prompt, err := requireString(inputs, "prompt")
	if err != nil {
		return nil, err
	}
	if g.client == nil {
		return map[string]any{"text": "mock response for " + prompt}, nil
	}

	var messages []openai.ChatCompletionMessage
	if cfg.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: cfg.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	model := pick(cfg.Model, g.cfg.TextModel)
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("text generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("text generation returned empty choice list")
	}
	logging.FromContext(ctx).DebugContext(ctx, "text generated", "model", model, "tokens", resp.Usage.TotalTokens)
	return map[string]any{"text": strings.TrimSpace(resp.Choices[0].Message.Content)}, nil
}

// Image turns the "prompt" input into an image reference on "image".
func (g *Generator) Image(ctx context.Context, inputs, data map[string]any) (map[string]any, error) {
	var cfg ImageConfig
	if err := executors.Decode(data, &cfg); err != nil {
		return nil, err
	}
	prompt, err := requireString(inputs, "prompt")
	if err != nil {
		return nil, err
	}
	size := pick(cfg.Size, openai.CreateImageSize1024x1024)
	if g.client == nil {
		return map[string]any{"image": map[string]any{"url": "mock://image/" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(prompt)).String(), "size": size}}, nil
	}

	resp, err := g.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          pick(cfg.Model, g.cfg.ImageModel),
		N:              1,
		Size:           size,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("image generation returned no data")
	}
	img := resp.Data[0]
	return map[string]any{"image": map[string]any{
		"url":           img.URL,
		"size":          size,
		"revisedPrompt": img.RevisedPrompt,
	}}, nil
}

// Speech reads the "text" input aloud, stores the clip under the output directory
// and emits its location on "audio".
func (g *Generator) Speech(ctx context.Context, inputs, data map[string]any) (map[string]any, error) {
	var cfg SpeechConfig
	if err := executors.Decode(data, &cfg); err != nil {
		return nil, err
	}
	text, err := requireString(inputs, "text")
	if err != nil {
		return nil, err
	}
	voice := pick(cfg.Voice, string(openai.VoiceAlloy))
	if g.client == nil {
		return map[string]any{"audio": map[string]any{"path": "", "format": "mp3", "voice": voice, "mock": true}}, nil
	}

	resp, err := g.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(pick(cfg.Model, g.cfg.SpeechModel)),
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          cfg.Speed,
	})
	if err != nil {
		return nil, fmt.Errorf("speech generation failed: %w", err)
	}
	defer resp.Close()

	if err := os.MkdirAll(g.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	path := filepath.Join(g.cfg.OutputDir, "speech-"+uuid.NewString()+".mp3")
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio file: %w", err)
	}
	n, err := io.Copy(f, resp)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to write audio file: %w", err)
	}
	logging.FromContext(ctx).DebugContext(ctx, "speech generated", "path", path, "bytes", n)
	return map[string]any{"audio": map[string]any{"path": path, "format": "mp3", "voice": voice, "bytes": n}}, nil
}
