package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"

	"custemoapi/designprompt"
	"custemoapi/models"
	"custemoapi/stylist"

	"github.com/avast/retry-go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// LLMModelName is a Google model served through the GenAI client.
type LLMModelName int32

const (
	Flash25 LLMModelName = iota
	Pro25
	Pro3
	Flash25Image
	Pro3Image
	Imagen4
	Veo31Fast
)

func (t LLMModelName) String() string {
	switch t {
	case Flash25:
		return "gemini-2.5-flash"
	case Pro25:
		return "gemini-2.5-pro"
	case Pro3:
		return "gemini-3-pro-preview"
	case Flash25Image:
		return "gemini-2.5-flash-image"
	case Pro3Image:
		return "gemini-3-pro-image-preview"
	case Imagen4:
		return "imagen-4.0-generate-001"
	case Veo31Fast:
		return "veo-3.1-fast-generate-preview"
	default:
		return "gemini-2.5-flash"
	}
}

// ChatModelFor maps a stylist variant onto the model that serves it.
func ChatModelFor(v stylist.ModelVariant) LLMModelName {
	switch v {
	case stylist.VariantVision:
		return Pro25
	case stylist.VariantReasoning:
		return Pro3
	default:
		return Flash25
	}
}

const (
	chatTemperature   = 0.7
	videoPollInterval = 5 * time.Second
)

var ErrNoImage = errors.New("no image generated")

func floatPointer(f float32) *float32 {
	return &f
}

func Int32Pointer(i int32) *int32 {
	return &i
}

// LLMResponse is a one-shot generation result with its token accounting.
type LLMResponse struct {
	Response           string               `json:"response"`
	Images             []stylist.Attachment `json:"images,omitempty"`
	InputTokenCount    int32                `json:"input_token_count"`
	ThoughtsTokenCount int32                `json:"thoughts_token_count"`
	OutputTokenCount   int32                `json:"output_token_count"`
	TotalTokenCount    int32                `json:"total_token_count"`
}

// ImageGenerator covers the campaign still-image tools.
type ImageGenerator interface {
	GenerateCampaignImage(ctx context.Context, prompt string, size models.ImageSize) (*LLMResponse, error)
	EditImage(ctx context.Context, image stylist.Attachment, instruction string) (*LLMResponse, error)
}

// VideoRenderer turns a still frame into a short clip. It blocks until the
// remote operation finishes.
type VideoRenderer interface {
	RenderVideo(ctx context.Context, prompt string, frame stylist.Attachment) (*stylist.Attachment, error)
}

type GoogleGenAIService struct {
	client *genai.Client
}

func NewGoogleGenAIService(ctx context.Context, apiKey string) (*GoogleGenAIService, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return &GoogleGenAIService{client: client}, nil
}

// GetAllInlineImages collects every inline image of every candidate. A blocked
// safety rating fails the whole response.
func GetAllInlineImages(result *genai.GenerateContentResponse) ([]stylist.Attachment, error) {
	if result == nil {
		return nil, fmt.Errorf("empty response")
	}
	if fb := result.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		return nil, fmt.Errorf("content violation: %s %s", fb.BlockReason, fb.BlockReasonMessage)
	}

	var images []stylist.Attachment
	for _, cand := range result.Candidates {
		for _, rating := range cand.SafetyRatings {
			if rating.Blocked {
				return nil, fmt.Errorf("content blocked by safety setting: %s", rating.Category)
			}
		}
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			inline := part.InlineData
			if inline == nil || len(inline.Data) == 0 || !strings.HasPrefix(inline.MIMEType, "image/") {
				continue
			}
			images = append(images, stylist.Attachment{Data: inline.Data, MIMEType: inline.MIMEType})
		}
	}
	return images, nil
}

func responseFrom(result *genai.GenerateContentResponse, images []stylist.Attachment) *LLMResponse {
	out := &LLMResponse{Response: result.Text(), Images: images}
	if usage := result.UsageMetadata; usage != nil {
		out.InputTokenCount = usage.PromptTokenCount
		out.ThoughtsTokenCount = usage.ThoughtsTokenCount
		out.OutputTokenCount = usage.CandidatesTokenCount
		out.TotalTokenCount = usage.TotalTokenCount
	}
	return out
}

func messageParts(msg stylist.Message) []*genai.Part {
	parts := []*genai.Part{genai.NewPartFromText(msg.Text)}
	if msg.Image != nil {
		parts = append(parts, genai.NewPartFromBytes(msg.Image.Data, msg.Image.MIMEType))
	}
	return parts
}

func historyContents(history []stylist.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		contents = append(contents, &genai.Content{Role: string(m.Role), Parts: messageParts(m)})
	}
	return contents
}

func chatConfig(route stylist.Route) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(stylist.SystemInstruction, genai.RoleUser),
		Temperature:       floatPointer(chatTemperature),
	}
	if route.SearchEnabled {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	if route.ThinkingBudget > 0 {
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: Int32Pointer(route.ThinkingBudget)}
	}
	return cfg
}

func (s *GoogleGenAIService) NewSession(ctx context.Context, route stylist.Route, history []stylist.Message) (stylist.ChatSession, error) {
	model := ChatModelFor(route.Variant)
	chat, err := s.client.Chats.Create(ctx, model.String(), chatConfig(route), historyContents(history))
	if err != nil {
		return nil, fmt.Errorf("open %s chat: %w", model, err)
	}
	log.Debug().Msgf("[Chat: %s] session opened with %d seeded messages", model, len(history))
	return &genaiChatSession{chat: chat, history: append([]stylist.Message(nil), history...)}, nil
}

// genaiChatSession keeps its own history so a replay into another model sees
// exactly the messages and assembled replies, not the raw stream chunks.
type genaiChatSession struct {
	chat *genai.Chat

	mu      sync.Mutex
	history []stylist.Message
}

func (s *genaiChatSession) SendStream(ctx context.Context, msg stylist.Message) iter.Seq2[stylist.Chunk, error] {
	return func(yield func(stylist.Chunk, error) bool) {
		var reply strings.Builder
		for resp, err := range s.chat.SendStream(ctx, messageParts(msg)...) {
			if err != nil {
				yield(nil, err)
				return
			}
			chunk := chunkFrom(resp)
			if chunk == nil {
				continue
			}
			reply.WriteString(chunk.Delta())
			if !yield(chunk, nil) {
				return
			}
		}

		s.mu.Lock()
		s.history = append(s.history, msg, stylist.Message{Role: stylist.RoleModel, Text: reply.String()})
		s.mu.Unlock()
	}
}

func (s *genaiChatSession) History() []stylist.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]stylist.Message(nil), s.history...)
}

func chunkFrom(resp *genai.GenerateContentResponse) stylist.Chunk {
	if resp == nil {
		return nil
	}
	text := resp.Text()
	citations := groundingCitations(resp)
	if len(citations) > 0 {
		return stylist.GroundedDelta{Text: text, Citations: citations}
	}
	if text == "" {
		return nil
	}
	return stylist.TextDelta{Text: text}
}

func groundingCitations(resp *genai.GenerateContentResponse) []stylist.Citation {
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var out []stylist.Citation
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		switch {
		case chunk.Web != nil && chunk.Web.URI != "":
			out = append(out, stylist.Citation{URI: chunk.Web.URI, Title: chunk.Web.Title, Kind: stylist.CitationWeb})
		case chunk.Maps != nil && chunk.Maps.URI != "":
			out = append(out, stylist.Citation{URI: chunk.Maps.URI, Title: chunk.Maps.Title, Kind: stylist.CitationMap})
		}
	}
	return out
}

// GeneratePreview renders the compiled prompt with Imagen.
func (s *GoogleGenAIService) GeneratePreview(ctx context.Context, cfg models.GarmentConfiguration) (*stylist.Attachment, error) {
	resp, err := s.client.Models.GenerateImages(ctx, Imagen4.String(), designprompt.Compile(cfg, ""), &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    "3:4",
		OutputMIMEType: "image/jpeg",
	})
	if err != nil {
		sentry.CaptureException(err)
		return nil, fmt.Errorf("preview generation: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil || len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
		if len(resp.GeneratedImages) > 0 && resp.GeneratedImages[0].RAIFilteredReason != "" {
			return nil, fmt.Errorf("preview filtered: %s", resp.GeneratedImages[0].RAIFilteredReason)
		}
		return nil, ErrNoImage
	}
	img := resp.GeneratedImages[0].Image
	mime := img.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	return &stylist.Attachment{Data: img.ImageBytes, MIMEType: mime}, nil
}

func (s *GoogleGenAIService) GenerateCampaignImage(ctx context.Context, prompt string, size models.ImageSize) (*LLMResponse, error) {
	if size == "" {
		size = models.ImageSize1K
	}
	result, err := s.client.Models.GenerateContent(ctx, Pro3Image.String(), genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
		ImageConfig: &genai.ImageConfig{
			AspectRatio: "1:1",
			ImageSize:   string(size),
		},
	})
	if err != nil {
		sentry.CaptureException(err)
		return nil, fmt.Errorf("campaign image: %w", err)
	}
	return imageResult(result)
}

func (s *GoogleGenAIService) EditImage(ctx context.Context, image stylist.Attachment, instruction string) (*LLMResponse, error) {
	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			genai.NewPartFromBytes(image.Data, image.MIMEType),
			genai.NewPartFromText(instruction),
		},
	}}
	result, err := s.client.Models.GenerateContent(ctx, Flash25Image.String(), contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	})
	if err != nil {
		sentry.CaptureException(err)
		return nil, fmt.Errorf("image edit: %w", err)
	}
	return imageResult(result)
}

func imageResult(result *genai.GenerateContentResponse) (*LLMResponse, error) {
	images, err := GetAllInlineImages(result)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, ErrNoImage
	}
	out := responseFrom(result, images)
	log.Info().Msgf("[GenAI] image tokens in=%d out=%d total=%d", out.InputTokenCount, out.OutputTokenCount, out.TotalTokenCount)
	return out, nil
}

// RenderVideo submits a Veo job and polls it until done, then downloads the
// first clip.
func (s *GoogleGenAIService) RenderVideo(ctx context.Context, prompt string, frame stylist.Attachment) (*stylist.Attachment, error) {
	if strings.TrimSpace(prompt) == "" {
		prompt = models.DefaultVideoPrompt
	}
	op, err := s.client.Models.GenerateVideos(ctx, Veo31Fast.String(), prompt,
		&genai.Image{ImageBytes: frame.Data, MIMEType: frame.MIMEType},
		&genai.GenerateVideosConfig{NumberOfVideos: 1, Resolution: "720p", AspectRatio: "16:9"},
	)
	if err != nil {
		return nil, fmt.Errorf("submit video: %w", err)
	}
	log.Info().Msgf("[Video: %s] submitted", op.Name)

	for !op.Done {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(videoPollInterval):
		}
		op, err = s.client.Operations.GetVideosOperation(ctx, op, nil)
		if err != nil {
			return nil, fmt.Errorf("poll video: %w", err)
		}
	}

	if op.Error != nil {
		return nil, fmt.Errorf("video generation failed: %v", op.Error["message"])
	}
	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 || op.Response.GeneratedVideos[0].Video == nil {
		return nil, fmt.Errorf("video generation failed: no video in response")
	}
	generated := op.Response.GeneratedVideos[0]
	data, err := retry.DoWithData(
		func() ([]byte, error) {
			return s.client.Files.Download(ctx, genai.NewDownloadURIFromGeneratedVideo(generated), nil)
		},
		retry.Context(ctx),
		retry.Attempts(downloadAttempts),
		retry.Delay(downloadDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("download video: %w", err)
	}
	mime := generated.Video.MIMEType
	if mime == "" {
		mime = "video/mp4"
	}
	log.Info().Msgf("[Video: %s] downloaded %d bytes", op.Name, len(data))
	return &stylist.Attachment{Data: data, MIMEType: mime}, nil
}
