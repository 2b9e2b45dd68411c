package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"custemoapi/models"
)

// RemoteStore talks to a record service exposing the REST surface served by
// this API's open record routes: /designs, /orders, /admin/*, /auth/* and /users/:id.
type RemoteStore struct {
	baseURL string
	client  *http.Client
}

func NewRemoteStore(baseURL string, client *http.Client) *RemoteStore {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &RemoteStore{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (s *RemoteStore) Close() error {
	return nil
}

// RemoteError is a non-success answer from the record service.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("record service returned %d: %s", e.Status, e.Message)
}

func (e *RemoteError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrDuplicateEmail
	case http.StatusUnprocessableEntity:
		return ErrInvalidTransition
	}
	return nil
}

func (s *RemoteStore) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("record service %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RemoteError{Status: resp.StatusCode, Message: errorMessage(raw)}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// errorMessage accepts both {"error": ...} and {"message": ...} bodies.
func errorMessage(raw []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(raw))
}

func (s *RemoteStore) SaveDesign(ctx context.Context, in models.SaveDesignIn) (*models.SavedDesign, error) {
	var design models.SavedDesign
	if err := s.do(ctx, http.MethodPost, "/designs", in, &design); err != nil {
		return nil, err
	}
	return &design, nil
}

func (s *RemoteStore) ListDesignsByUser(ctx context.Context, userID string) ([]models.SavedDesign, error) {
	designs := []models.SavedDesign{}
	err := s.do(ctx, http.MethodGet, "/designs/"+url.PathEscape(userID), nil, &designs)
	return designs, err
}

func (s *RemoteStore) ListAllDesigns(ctx context.Context) ([]models.SavedDesign, error) {
	designs := []models.SavedDesign{}
	err := s.do(ctx, http.MethodGet, "/admin/designs", nil, &designs)
	return designs, err
}

func (s *RemoteStore) CreateOrder(ctx context.Context, in models.CreateOrderIn) (*models.Order, error) {
	var order models.Order
	if err := s.do(ctx, http.MethodPost, "/orders", in, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *RemoteStore) ListOrders(ctx context.Context, scope models.OrderScope) ([]models.Order, error) {
	path := "/admin/orders"
	if !scope.All() {
		path = "/orders/" + url.PathEscape(scope.UserID)
	}
	orders := []models.Order{}
	err := s.do(ctx, http.MethodGet, path, nil, &orders)
	return orders, err
}

func (s *RemoteStore) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error) {
	var order models.Order
	in := models.UpdateOrderStatusIn{Status: status}
	if err := s.do(ctx, http.MethodPatch, "/admin/orders/"+url.PathEscape(orderID)+"/status", in, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *RemoteStore) FindUser(ctx context.Context, id string) (*models.UserAccount, error) {
	var out models.UserOut
	if err := s.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return accountFrom(out), nil
}

func (s *RemoteStore) FindUserByEmail(ctx context.Context, email string) (*models.UserAccount, error) {
	var out models.UserOut
	if err := s.do(ctx, http.MethodPost, "/auth/login", models.LoginIn{Email: NormalizeEmail(email)}, &out); err != nil {
		return nil, err
	}
	return accountFrom(out), nil
}

func (s *RemoteStore) RegisterUser(ctx context.Context, in models.RegisterIn) (*models.UserAccount, error) {
	var out models.UserOut
	if err := s.do(ctx, http.MethodPost, "/auth/register", in, &out); err != nil {
		return nil, err
	}
	return accountFrom(out), nil
}

func accountFrom(out models.UserOut) *models.UserAccount {
	return &models.UserAccount{
		RecordModel: models.RecordModel{ID: out.ID},
		Email:       out.Email,
		Name:        out.Name,
		Role:        out.Role,
		Avatar:      out.Avatar,
	}
}
