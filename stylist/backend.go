package stylist

import (
	"context"
	"encoding/base64"
	"iter"

	"custemoapi/models"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Attachment is inline media sent with or produced for a turn.
type Attachment struct {
	Data     []byte `json:"-"`
	MIMEType string `json:"mime_type"`
}

func (a Attachment) DataURL() string {
	return "data:" + a.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(a.Data)
}

// Message is one entry of the history a backend session is seeded with.
type Message struct {
	Role  Role
	Text  string
	Image *Attachment
}

// ChatBackend opens conversations against a concrete model variant.
type ChatBackend interface {
	NewSession(ctx context.Context, route Route, history []Message) (ChatSession, error)
}

// ChatSession is one backend conversation. SendStream returns a finite lazy
// sequence; an error ends it.
type ChatSession interface {
	SendStream(ctx context.Context, msg Message) iter.Seq2[Chunk, error]
	History() []Message
}

// PreviewGenerator renders a garment configuration into an image.
type PreviewGenerator interface {
	GeneratePreview(ctx context.Context, cfg models.GarmentConfiguration) (*Attachment, error)
}

// Counter matches metrics.Registry so the manager can report without importing it.
type Counter interface {
	Inc(ctx context.Context, name string, labels map[string]string, n int64)
}
