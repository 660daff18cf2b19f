// ABOUTME: Gemini provider over the generativelanguage REST API.
// ABOUTME: Persona generation with web grounding, stateful chat sessions, TTS.

package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/audio"
	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/genai"
	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/source"
	"github.com/MostlyKIGuess/Talk-To-Anyone/internal/voice"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

func init() {
	genai.Register("gemini", func(opts genai.Options) (genai.Client, error) {
		return NewClient(opts)
	})
}

// Client talks to the Gemini REST API.
type Client struct {
	apiKey   string
	model    string
	ttsModel string
	baseURL  string
	httpc    *http.Client
}

// NewClient builds a Gemini client from options. The API key is required.
func NewClient(opts genai.Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	c := &Client{
		apiKey:   opts.APIKey,
		model:    opts.Model,
		ttsModel: opts.TTSModel,
		baseURL:  opts.BaseURL,
		httpc:    &http.Client{Timeout: 120 * time.Second},
	}
	if c.model == "" {
		c.model = "gemini-2.0-flash"
	}
	if c.ttsModel == "" {
		c.ttsModel = "gemini-2.5-flash-preview-tts"
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	return c, nil
}

// Name implements genai.Client.
func (c *Client) Name() string { return "gemini" }

// Request/response wire types, trimmed to the fields we use.

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"` // base64
}

type tool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	Tools             []tool            `json:"tools,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *speechConfig `json:"speechConfig,omitempty"`
}

type speechConfig struct {
	VoiceConfig             *voiceConfig             `json:"voiceConfig,omitempty"`
	MultiSpeakerVoiceConfig *multiSpeakerVoiceConfig `json:"multiSpeakerVoiceConfig,omitempty"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig prebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

type prebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type multiSpeakerVoiceConfig struct {
	SpeakerVoiceConfigs []speakerVoiceConfig `json:"speakerVoiceConfigs"`
}

type speakerVoiceConfig struct {
	Speaker     string      `json:"speaker"`
	VoiceConfig voiceConfig `json:"voiceConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content           content `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web *struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// generate posts a generateContent request against the given model.
func (c *Client) generate(ctx context.Context, model string, req *generateRequest) (*generateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling gemini: %w", err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var resp generateResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		if resp.Error != nil {
			return nil, fmt.Errorf("gemini: %s (status %d)", resp.Error.Message, httpResp.StatusCode)
		}
		return nil, fmt.Errorf("gemini: unexpected status %d", httpResp.StatusCode)
	}
	return &resp, nil
}

// text returns the concatenated text parts of the first candidate.
func (r *generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// sources extracts grounding citations from the first candidate.
func (r *generateResponse) sources() []source.Source {
	if len(r.Candidates) == 0 || r.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var out []source.Source
	for _, chunk := range r.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		title := chunk.Web.Title
		if title == "" {
			title = "Source"
		}
		out = append(out, source.Source{URI: chunk.Web.URI, Title: title})
	}
	return out
}

// inlineAudio returns the first inline audio payload of the first candidate.
func (r *generateResponse) inlineAudio() (string, bool) {
	if len(r.Candidates) == 0 {
		return "", false
	}
	for _, p := range r.Candidates[0].Content.Parts {
		if p.InlineData != nil && p.InlineData.Data != "" {
			return p.InlineData.Data, true
		}
	}
	return "", false
}

// GeneratePersona researches the named persona with web grounding, then
// writes a system prompt from the research. Two calls: the first gathers
// facts, the second produces the prompt.
func (c *Client) GeneratePersona(ctx context.Context, personaName string) (string, error) {
	research, err := c.generate(ctx, c.model, &generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: researchPrompt(personaName)}},
		}},
		Tools: []tool{{GoogleSearch: &struct{}{}}},
	})
	if err != nil {
		return "", fmt.Errorf("persona research for %q: %w", personaName, err)
	}

	resp, err := c.generate(ctx, c.model, &generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: personaPrompt(personaName, research.text())}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("persona generation for %q: %w", personaName, err)
	}

	text := resp.text()
	if text == "" {
		return "", fmt.Errorf("persona generation for %q: empty response", personaName)
	}
	return text, nil
}

// NewSession creates a chat session conditioned on the persona prompt.
// History lives client-side; the API is stateless.
func (c *Client) NewSession(ctx context.Context, systemPrompt string) (genai.ChatSession, error) {
	if systemPrompt == "" {
		return nil, fmt.Errorf("gemini: system prompt is required")
	}
	return &session{client: c, systemPrompt: systemPrompt}, nil
}

type session struct {
	client       *Client
	systemPrompt string
	history      []content
}

// Send appends the user turn, calls the model with the full history, and
// records the reply. On error the user turn is not kept, so a retry does
// not duplicate it.
func (s *session) Send(ctx context.Context, text string) (*genai.Reply, error) {
	turn := content{Role: "user", Parts: []part{{Text: text}}}

	resp, err := s.client.generate(ctx, s.client.model, &generateRequest{
		Contents:          append(append([]content{}, s.history...), turn),
		SystemInstruction: &content{Parts: []part{{Text: s.systemPrompt}}},
		Tools:             []tool{{GoogleSearch: &struct{}{}}},
	})
	if err != nil {
		return nil, err
	}

	replyText := resp.text()
	s.history = append(s.history, turn)
	s.history = append(s.history, content{Role: "model", Parts: []part{{Text: replyText}}})

	return &genai.Reply{Text: replyText, Sources: resp.sources()}, nil
}

// Synthesize renders text to WAV using the prebuilt voice. The style
// prompt and language hint are prepended as spoken-direction text, the
// way the TTS models expect.
func (c *Client) Synthesize(ctx context.Context, req genai.SpeechRequest) ([]byte, error) {
	if req.Text == "" {
		return nil, fmt.Errorf("gemini: no text to synthesize")
	}
	voiceName := req.Voice
	if voiceName == "" {
		voiceName = voice.DefaultVoice
	}

	resp, err := c.generate(ctx, c.ttsModel, &generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: speechText(req)}},
		}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				VoiceConfig: &voiceConfig{
					PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: voiceName},
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	return decodePCM(resp)
}

// SynthesizeDialogue voices a whole transcript with one voice per speaker.
// Implements genai.DialogueSynthesizer.
func (c *Client) SynthesizeDialogue(ctx context.Context, transcript string, speakers []genai.Speaker) ([]byte, error) {
	if transcript == "" {
		return nil, fmt.Errorf("gemini: no transcript to synthesize")
	}
	configs := make([]speakerVoiceConfig, 0, len(speakers))
	for _, sp := range speakers {
		configs = append(configs, speakerVoiceConfig{
			Speaker: sp.Name,
			VoiceConfig: voiceConfig{
				PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: sp.Voice},
			},
		})
	}

	resp, err := c.generate(ctx, c.ttsModel, &generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: transcript}},
		}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				MultiSpeakerVoiceConfig: &multiSpeakerVoiceConfig{SpeakerVoiceConfigs: configs},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	return decodePCM(resp)
}

// decodePCM pulls the inline base64 PCM out of a response and wraps it in
// a WAV container.
func decodePCM(resp *generateResponse) ([]byte, error) {
	b64, ok := resp.inlineAudio()
	if !ok {
		return nil, fmt.Errorf("gemini: response contains no audio")
	}
	pcm, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("decoding audio payload: %w", err)
	}
	return audio.EncodeWAV(pcm), nil
}

// speechText combines the style prompt, language hint, and text into the
// single prompt string the TTS model consumes.
func speechText(req genai.SpeechRequest) string {
	text := req.Text
	if req.StylePrompt != "" {
		text = req.StylePrompt + ": " + text
	}
	if req.LanguageHint != "" {
		if locale, ok := voice.LocaleFor(req.LanguageHint); ok {
			text = fmt.Sprintf("Speak in %s (%s). %s", req.LanguageHint, locale, text)
		}
	}
	return text
}
