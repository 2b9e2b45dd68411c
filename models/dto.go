package models

type QuoteIn struct {
	Items int `json:"items" validate:"required,min=1,max=50"`
}

type PreviewOut struct {
	Applied  bool   `json:"applied"`
	Sequence uint64 `json:"sequence"`
	Image    string `json:"image,omitempty"`
	Error    string `json:"error,omitempty"`
}

type WorkspaceOut struct {
	Configuration GarmentConfiguration `json:"configuration"`
	Prompt        string               `json:"prompt"`
	Preview       *string              `json:"preview,omitempty"`
	Generating    bool                 `json:"generating"`
	Error         string               `json:"error,omitempty"`
	Sequence      uint64               `json:"sequence"`
}

type ChatIn struct {
	Message     string `json:"message" validate:"required,max=4000"`
	UseThinking bool   `json:"useThinking"`
	Image       string `json:"image" validate:"omitempty,max=16000000"`
	Widget      string `json:"widget" validate:"omitempty,max=64,alphanum"`
}
