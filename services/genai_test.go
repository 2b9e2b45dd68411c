package services

import (
	"testing"

	"custemoapi/stylist"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func TestChatModelFor(t *testing.T) {
	assert.Equal(t, "gemini-2.5-flash", ChatModelFor(stylist.VariantStandard).String())
	assert.Equal(t, "gemini-2.5-pro", ChatModelFor(stylist.VariantVision).String())
	assert.Equal(t, "gemini-3-pro-preview", ChatModelFor(stylist.VariantReasoning).String())
	assert.Equal(t, "imagen-4.0-generate-001", Imagen4.String())
	assert.Equal(t, "veo-3.1-fast-generate-preview", Veo31Fast.String())
}

func TestChatConfig(t *testing.T) {
	standard := chatConfig(stylist.SelectRoute(stylist.SendOptions{}))
	require.Len(t, standard.Tools, 1)
	assert.NotNil(t, standard.Tools[0].GoogleSearch)
	assert.Nil(t, standard.ThinkingConfig)
	assert.Equal(t, float32(0.7), *standard.Temperature)
	assert.Equal(t, stylist.SystemInstruction, standard.SystemInstruction.Parts[0].Text)

	reasoning := chatConfig(stylist.SelectRoute(stylist.SendOptions{UseThinking: true}))
	assert.Empty(t, reasoning.Tools)
	require.NotNil(t, reasoning.ThinkingConfig)
	assert.Equal(t, int32(32768), *reasoning.ThinkingConfig.ThinkingBudget)
}

func TestHistoryContents(t *testing.T) {
	img := &stylist.Attachment{Data: []byte{1, 2}, MIMEType: "image/png"}
	contents := historyContents([]stylist.Message{
		{Role: stylist.RoleUser, Text: "hi", Image: img},
		{Role: stylist.RoleModel, Text: "hello"},
	})
	require.Len(t, contents, 2)
	assert.Equal(t, "user", contents[0].Role)
	require.Len(t, contents[0].Parts, 2)
	assert.Equal(t, "hi", contents[0].Parts[0].Text)
	assert.Equal(t, []byte{1, 2}, contents[0].Parts[1].InlineData.Data)
	assert.Equal(t, "model", contents[1].Role)
	assert.Len(t, contents[1].Parts, 1)
}

func TestChunkFrom(t *testing.T) {
	assert.Nil(t, chunkFrom(nil))
	assert.Nil(t, chunkFrom(&genai.GenerateContentResponse{}))
	assert.Equal(t, stylist.TextDelta{Text: "Linen breathes."}, chunkFrom(textResponse("Linen breathes.")))

	grounded := textResponse("Trending now")
	grounded.Candidates[0].GroundingMetadata = &genai.GroundingMetadata{
		GroundingChunks: []*genai.GroundingChunk{
			{Web: &genai.GroundingChunkWeb{URI: "https://vogue.example/ss26", Title: "SS26"}},
			{Web: &genai.GroundingChunkWeb{URI: ""}},
			{Maps: &genai.GroundingChunkMaps{URI: "https://maps.example/store", Title: "Store"}},
		},
	}
	chunk := chunkFrom(grounded)
	delta, ok := chunk.(stylist.GroundedDelta)
	require.True(t, ok)
	assert.Equal(t, "Trending now", delta.Text)
	assert.Equal(t, []stylist.Citation{
		{URI: "https://vogue.example/ss26", Title: "SS26", Kind: stylist.CitationWeb},
		{URI: "https://maps.example/store", Title: "Store", Kind: stylist.CitationMap},
	}, delta.Citations)
}

func TestGetAllInlineImages(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "here"},
				{InlineData: &genai.Blob{Data: []byte{9}, MIMEType: "image/png"}},
				{InlineData: &genai.Blob{Data: []byte{8}, MIMEType: "application/pdf"}},
			}},
		}},
	}
	images, err := GetAllInlineImages(resp)
	require.NoError(t, err)
	assert.Equal(t, []stylist.Attachment{{Data: []byte{9}, MIMEType: "image/png"}}, images)

	_, err = GetAllInlineImages(nil)
	assert.Error(t, err)

	blocked := &genai.GenerateContentResponse{PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety}}
	_, err = GetAllInlineImages(blocked)
	assert.ErrorContains(t, err, "content violation")

	unsafe := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		SafetyRatings: []*genai.SafetyRating{{Blocked: true, Category: genai.HarmCategoryHarassment}},
	}}}
	_, err = GetAllInlineImages(unsafe)
	assert.ErrorContains(t, err, "content blocked")

	_, err = imageResult(textResponse("no picture"))
	assert.ErrorIs(t, err, ErrNoImage)
}
