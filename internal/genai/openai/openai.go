// ABOUTME: OpenAI provider built on the go-openai client.
// ABOUTME: Chat sessions and persona generation; replies carry no grounding sources.

package openai

import (
	"context"
	"fmt"
	"io"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/genai"
	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/voice"
)

func init() {
	genai.Register("openai", func(opts genai.Options) (genai.Client, error) {
		return NewClient(opts)
	})
}

// Client wraps the OpenAI API for persona chat and speech.
type Client struct {
	api      *goopenai.Client
	model    string
	ttsModel goopenai.SpeechModel
}

// NewClient builds an OpenAI client from options. The API key is required.
func NewClient(opts genai.Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("openai: api key is required")
	}

	cfg := goopenai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	c := &Client{
		api:      goopenai.NewClientWithConfig(cfg),
		model:    opts.Model,
		ttsModel: goopenai.TTSModel1,
	}
	if c.model == "" || c.model == "gemini-2.0-flash" {
		// Model names are provider-specific; ignore a gemini default.
		c.model = goopenai.GPT4oMini
	}
	if opts.TTSModel != "" && opts.TTSModel != "gemini-2.5-flash-preview-tts" {
		c.ttsModel = goopenai.SpeechModel(opts.TTSModel)
	}
	return c, nil
}

// Name implements genai.Client.
func (c *Client) Name() string { return "openai" }

// GeneratePersona writes a stay-in-character system prompt for the named
// persona. OpenAI chat completions have no web grounding, so this is a
// single call from model knowledge.
func (c *Client) GeneratePersona(ctx context.Context, personaName string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: personaInstructions},
			{Role: goopenai.ChatMessageRoleUser, Content: "Generate a system prompt for: " + personaName},
		},
	})
	if err != nil {
		return "", fmt.Errorf("persona generation for %q: %w", personaName, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("persona generation for %q: empty response", personaName)
	}
	return resp.Choices[0].Message.Content, nil
}

// NewSession creates a chat session seeded with the persona system prompt.
func (c *Client) NewSession(ctx context.Context, systemPrompt string) (genai.ChatSession, error) {
	if systemPrompt == "" {
		return nil, fmt.Errorf("openai: system prompt is required")
	}
	return &session{
		client: c,
		messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
		},
	}, nil
}

type session struct {
	client   *Client
	messages []goopenai.ChatCompletionMessage
}

// Send appends the user turn and calls the model with the accumulated
// message history. A failed call does not keep the user turn.
func (s *session) Send(ctx context.Context, text string) (*genai.Reply, error) {
	msgs := append(append([]goopenai.ChatCompletionMessage{}, s.messages...),
		goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser, Content: text})

	resp, err := s.client.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:    s.client.model,
		Messages: msgs,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return &genai.Reply{}, nil
	}

	replyText := resp.Choices[0].Message.Content
	s.messages = append(msgs, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleAssistant,
		Content: replyText,
	})

	// No grounding metadata on this API; replies never carry sources.
	return &genai.Reply{Text: replyText}, nil
}

// Synthesize renders text to WAV speech. The catalog voice is mapped to
// the closest OpenAI prebuilt voice by gender; the style prompt becomes
// part of the input text since the API has no style parameter.
func (c *Client) Synthesize(ctx context.Context, req genai.SpeechRequest) ([]byte, error) {
	if req.Text == "" {
		return nil, fmt.Errorf("openai: no text to synthesize")
	}

	input := req.Text
	if req.StylePrompt != "" {
		input = req.StylePrompt + ": " + input
	}

	resp, err := c.api.CreateSpeech(ctx, goopenai.CreateSpeechRequest{
		Model:          c.ttsModel,
		Input:          input,
		Voice:          mapVoice(req.Voice),
		ResponseFormat: goopenai.SpeechResponseFormatWav,
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis: %w", err)
	}
	defer resp.Close()

	wav, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("reading speech response: %w", err)
	}
	return wav, nil
}

// mapVoice picks an OpenAI voice for a catalog voice identifier.
func mapVoice(catalogVoice string) goopenai.SpeechVoice {
	profile, ok := voice.Lookup(catalogVoice)
	if !ok {
		return goopenai.VoiceAlloy
	}
	switch profile.Gender {
	case "female":
		return goopenai.VoiceNova
	case "male":
		return goopenai.VoiceOnyx
	default:
		return goopenai.VoiceAlloy
	}
}
