package test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"custemoapi/config"
	"custemoapi/models"
	"custemoapi/services"
	"custemoapi/store"
	"custemoapi/stylist"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const JWTSecret = "test-jwt-secret"

var FakeMP4 = []byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p', 'm', 'p', '4', '2'}

func Config() config.Config {
	return config.Config{
		Env:         "test",
		JWTSecret:   JWTSecret,
		RecordStore: config.StoreLocal,
		SessionTTL:  time.Hour,
	}
}

func JsonString(model interface{}) string {
	bytes, _ := json.Marshal(model)
	return string(bytes)
}

func NewJSONRequest(method string, target string, param interface{}) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	return req
}

func GenerateUserToken(userPk string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userPk,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	t, err := token.SignedString([]byte(JWTSecret))
	if err != nil {
		panic(fmt.Sprintf("signing test token for %s: %v", userPk, err))
	}
	return t
}

func NewJSONAuthRequest(method string, target string, userPk string, param interface{}) *http.Request {
	req := NewJSONRequest(method, target, param)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", GenerateUserToken(userPk)))
	return req
}

func NewJSONAuthRequestRaw(method string, target string, userPk string, json string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(json))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", GenerateUserToken(userPk)))
	return req
}

// NewRecordStore opens an in-memory embedded store with the default users
// seeded. It is closed when the test ends.
func NewRecordStore(t testing.TB) *store.LocalStore {
	t.Helper()
	s, err := store.OpenLocalStore("")
	if err != nil {
		t.Fatalf("open local store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := store.Seed(context.Background(), s); err != nil {
		t.Fatalf("seed local store: %v", err)
	}
	return s
}

func FakeUser(t testing.TB, s store.RecordStore, email string) *models.UserAccount {
	t.Helper()
	if email == "" {
		email = "email@example.com"
	}
	user, err := s.RegisterUser(context.Background(), models.RegisterIn{Email: email, Name: "OurName"})
	if err != nil {
		t.Fatalf("register fake user: %v", err)
	}
	return user
}

func FakeAdmin(t testing.TB, s store.RecordStore) *models.UserAccount {
	t.Helper()
	user, err := s.FindUserByEmail(context.Background(), "admin@custemo.com")
	if err != nil {
		t.Fatalf("seeded admin missing: %v", err)
	}
	return user
}

type AWSProviderMock struct {
	MockUrl   string
	UploadErr error

	mu      sync.Mutex
	uploads map[string]stylist.Attachment
}

func (m *AWSProviderMock) UploadObject(ctx context.Context, key string, data []byte, contentType string) error {
	if m.UploadErr != nil {
		return m.UploadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uploads == nil {
		m.uploads = make(map[string]stylist.Attachment)
	}
	m.uploads[key] = stylist.Attachment{Data: append([]byte(nil), data...), MIMEType: contentType}
	return nil
}

func (m *AWSProviderMock) GetPresignedR2FileReadURL(ctx context.Context, fileKey string) (string, error) {
	if m.MockUrl != "" {
		return m.MockUrl, nil
	}
	return fmt.Sprintf("https://fakebucketurl.com/%s", fileKey), nil
}

func (m *AWSProviderMock) Uploaded(key string) (stylist.Attachment, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.uploads[key]
	return a, ok
}

func (m *AWSProviderMock) UploadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.uploads)
}

type ImageGeneratorMock struct {
	Err error

	mu           sync.Mutex
	Prompts      []string
	Sizes        []models.ImageSize
	Instructions []string
}

func (g *ImageGeneratorMock) GenerateCampaignImage(ctx context.Context, prompt string, size models.ImageSize) (*services.LLMResponse, error) {
	g.mu.Lock()
	g.Prompts = append(g.Prompts, prompt)
	g.Sizes = append(g.Sizes, size)
	g.mu.Unlock()
	return g.result()
}

func (g *ImageGeneratorMock) EditImage(ctx context.Context, image stylist.Attachment, instruction string) (*services.LLMResponse, error) {
	g.mu.Lock()
	g.Instructions = append(g.Instructions, instruction)
	g.mu.Unlock()
	return g.result()
}

func (g *ImageGeneratorMock) result() (*services.LLMResponse, error) {
	if g.Err != nil {
		return nil, g.Err
	}
	return &services.LLMResponse{
		Images:           []stylist.Attachment{{Data: FakePNG, MIMEType: "image/png"}},
		InputTokenCount:  10,
		OutputTokenCount: 13,
		TotalTokenCount:  23,
	}, nil
}

type VideoRendererMock struct {
	Err error

	mu      sync.Mutex
	Prompts []string
	Frames  []stylist.Attachment
}

func (r *VideoRendererMock) RenderVideo(ctx context.Context, prompt string, frame stylist.Attachment) (*stylist.Attachment, error) {
	r.mu.Lock()
	r.Prompts = append(r.Prompts, prompt)
	r.Frames = append(r.Frames, frame)
	r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return &stylist.Attachment{Data: FakeMP4, MIMEType: "video/mp4"}, nil
}

// QueueMock stands in for both the asynq client and inspector.
type QueueMock struct {
	EnqueueErr error

	mu    sync.Mutex
	tasks map[string]*asynq.TaskInfo
	order []string
}

func (q *QueueMock) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if q.EnqueueErr != nil {
		return nil, q.EnqueueErr
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.tasks == nil {
		q.tasks = make(map[string]*asynq.TaskInfo)
	}
	info := &asynq.TaskInfo{
		ID:      uuid.NewString(),
		Queue:   "generate",
		Type:    task.Type(),
		Payload: task.Payload(),
		State:   asynq.TaskStatePending,
	}
	q.tasks[info.ID] = info
	q.order = append(q.order, info.ID)
	copied := *info
	return &copied, nil
}

func (q *QueueMock) GetTaskInfo(queue, id string) (*asynq.TaskInfo, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	info, ok := q.tasks[id]
	if !ok || info.Queue != queue {
		return nil, asynq.ErrTaskNotFound
	}
	copied := *info
	return &copied, nil
}

// Enqueued returns the tasks in enqueue order.
func (q *QueueMock) Enqueued() []asynq.TaskInfo {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]asynq.TaskInfo, 0, len(q.order))
	for _, id := range q.order {
		out = append(out, *q.tasks[id])
	}
	return out
}

func (q *QueueMock) SetState(id string, state asynq.TaskState, result string, lastErr string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if info, ok := q.tasks[id]; ok {
		info.State = state
		info.Result = []byte(result)
		info.LastErr = lastErr
	}
}
