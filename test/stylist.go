package test

import (
	"context"
	"errors"
	"iter"
	"slices"
	"strings"
	"sync"

	"custemoapi/models"
	"custemoapi/stylist"
)

// ScriptedReply is one canned model reply. Err, when set, ends the stream
// after Chunks have been delivered.
type ScriptedReply struct {
	Chunks []stylist.Chunk
	Err    error
}

func TextReply(parts ...string) ScriptedReply {
	r := ScriptedReply{}
	for _, p := range parts {
		r.Chunks = append(r.Chunks, stylist.TextDelta{Text: p})
	}
	return r
}

// ChatBackendMock plays Script back one reply per SendStream call, across
// every session it has opened.
type ChatBackendMock struct {
	mu            sync.Mutex
	Script        []ScriptedReply
	NewSessionErr error
	Sessions      []*ChatSessionMock
	replies       int
}

func (b *ChatBackendMock) NewSession(ctx context.Context, route stylist.Route, history []stylist.Message) (stylist.ChatSession, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.NewSessionErr != nil {
		return nil, b.NewSessionErr
	}
	s := &ChatSessionMock{
		backend: b,
		Route:   route,
		Seed:    slices.Clone(history),
		history: slices.Clone(history),
	}
	b.Sessions = append(b.Sessions, s)
	return s, nil
}

func (b *ChatBackendMock) next() ScriptedReply {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.replies < len(b.Script) {
		r := b.Script[b.replies]
		b.replies++
		return r
	}
	b.replies++
	return TextReply("Noted.")
}

func (b *ChatBackendMock) SessionCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Sessions)
}

type ChatSessionMock struct {
	backend *ChatBackendMock
	Route   stylist.Route
	Seed    []stylist.Message
	Sent    []stylist.Message
	history []stylist.Message
}

func (s *ChatSessionMock) SendStream(ctx context.Context, msg stylist.Message) iter.Seq2[stylist.Chunk, error] {
	return func(yield func(stylist.Chunk, error) bool) {
		reply := s.backend.next()
		s.Sent = append(s.Sent, msg)
		var text strings.Builder
		for _, c := range reply.Chunks {
			text.WriteString(c.Delta())
			if !yield(c, nil) {
				return
			}
		}
		if reply.Err != nil {
			yield(nil, reply.Err)
			return
		}
		s.history = append(s.history, msg, stylist.Message{Role: stylist.RoleModel, Text: text.String()})
	}
}

func (s *ChatSessionMock) History() []stylist.Message {
	return slices.Clone(s.history)
}

// PreviewGeneratorMock returns a fixed one-pixel PNG unless Err is set.
type PreviewGeneratorMock struct {
	mu      sync.Mutex
	Err     error
	Configs []models.GarmentConfiguration
}

var FakePNG = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

func (g *PreviewGeneratorMock) GeneratePreview(ctx context.Context, cfg models.GarmentConfiguration) (*stylist.Attachment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Configs = append(g.Configs, cfg)
	if g.Err != nil {
		return nil, g.Err
	}
	return &stylist.Attachment{Data: FakePNG, MIMEType: "image/png"}, nil
}

func (g *PreviewGeneratorMock) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Configs)
}

var ErrBackendDown = errors.New("backend unavailable")
