package models

import (
	"slices"

	"github.com/go-playground/validator"
)

type ImageSize string

const (
	ImageSize1K ImageSize = "1K"
	ImageSize2K ImageSize = "2K"
	ImageSize4K ImageSize = "4K"
)

func (s ImageSize) Valid() bool {
	return slices.Contains([]ImageSize{ImageSize1K, ImageSize2K, ImageSize4K}, s)
}

func ValidateImageSize(fl validator.FieldLevel) bool {
	return ImageSize(fl.Field().String()).Valid()
}

const DefaultVideoPrompt = "Cinematic movement of the fabric, fashion runway style"

type CampaignImageIn struct {
	Prompt string    `json:"prompt" validate:"omitempty,max=4000"`
	Size   ImageSize `json:"size" validate:"omitempty,imagesize"`
}

type CampaignEditIn struct {
	Image       string `json:"image" validate:"required,max=16000000"`
	Instruction string `json:"instruction" validate:"required,max=2000"`
}

type CampaignVideoIn struct {
	Image  string `json:"image" validate:"required,max=16000000"`
	Prompt string `json:"prompt" validate:"omitempty,max=2000"`
}

type CampaignImageOut struct {
	Image  string `json:"image"`
	Prompt string `json:"prompt,omitempty"`
}

type VideoJobState string

const (
	VideoJobQueued    VideoJobState = "queued"
	VideoJobRendering VideoJobState = "rendering"
	VideoJobDone      VideoJobState = "done"
	VideoJobFailed    VideoJobState = "failed"
)

type VideoJobOut struct {
	ID    string        `json:"id"`
	State VideoJobState `json:"state"`
	URL   string        `json:"url,omitempty"`
	Error string        `json:"error,omitempty"`
}
