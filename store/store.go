// Package store persists users, saved designs and orders behind one
// RecordStore interface. The backend is picked once at startup.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"custemoapi/config"
	"custemoapi/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrInvalidTransition = errors.New("order status can only move forward")
)

type RecordStore interface {
	SaveDesign(ctx context.Context, in models.SaveDesignIn) (*models.SavedDesign, error)
	ListDesignsByUser(ctx context.Context, userID string) ([]models.SavedDesign, error)
	ListAllDesigns(ctx context.Context) ([]models.SavedDesign, error)

	CreateOrder(ctx context.Context, in models.CreateOrderIn) (*models.Order, error)
	ListOrders(ctx context.Context, scope models.OrderScope) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error)

	FindUser(ctx context.Context, id string) (*models.UserAccount, error)
	FindUserByEmail(ctx context.Context, email string) (*models.UserAccount, error)
	RegisterUser(ctx context.Context, in models.RegisterIn) (*models.UserAccount, error)

	Close() error
}

// userSeeder is implemented by backends that own their user table.
type userSeeder interface {
	seedUser(ctx context.Context, user models.UserAccount) error
}

// Open returns the backend selected by cfg.RecordStore. The SQL backend needs
// an already migrated connection and is built with NewSQLStore instead.
func Open(cfg config.Config) (RecordStore, error) {
	switch cfg.RecordStore {
	case config.StoreRemote:
		return NewRemoteStore(cfg.RecordStoreURL, nil), nil
	case config.StoreLocal:
		return OpenLocalStore(cfg.LocalStorePath)
	default:
		return nil, fmt.Errorf("record store %q cannot be opened here", cfg.RecordStore)
	}
}

// DefaultUsers are created on startup when missing.
func DefaultUsers() []models.UserAccount {
	return []models.UserAccount{
		{
			RecordModel: models.RecordModel{ID: "admin_01"},
			Email:       "admin@custemo.com",
			Name:        "Admin User",
			Role:        models.RoleAdmin,
			Avatar:      models.AvatarFor("Admin"),
		},
		{
			RecordModel: models.RecordModel{ID: "user_01"},
			Email:       "demo@custemo.com",
			Name:        "Demo User",
			Role:        models.RoleCustomer,
			Avatar:      models.AvatarFor("Felix"),
		},
	}
}

// Seed creates the default accounts on backends that manage users locally.
// Remote stores own their data and are left alone.
func Seed(ctx context.Context, s RecordStore) error {
	seeder, ok := s.(userSeeder)
	if !ok {
		return nil
	}
	for _, u := range DefaultUsers() {
		_, err := s.FindUserByEmail(ctx, u.Email)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := seeder.seedUser(ctx, u); err != nil {
			return fmt.Errorf("seed %s: %w", u.Email, err)
		}
	}
	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// clock hands out strictly increasing creation timestamps at the precision
// Postgres keeps, so ordering by createdAt is total within one process.
type clock struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

func newClock() *clock {
	return &clock{now: time.Now}
}

func (c *clock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now().UTC().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}

func newRecord(c *clock) models.RecordModel {
	return models.RecordModel{ID: uuid.NewString(), CreatedAt: c.Next()}
}

func buildDesign(c *clock, in models.SaveDesignIn) models.SavedDesign {
	return models.SavedDesign{
		RecordModel:  newRecord(c),
		UserID:       in.UserID,
		Name:         in.Name,
		State:        datatypes.NewJSONType(in.State.Normalized()),
		PreviewImage: in.PreviewImage,
	}
}

func buildOrder(c *clock, in models.CreateOrderIn) models.Order {
	total := models.QuoteOrder(len(in.Items)).Total
	if in.TotalAmount != nil {
		total = *in.TotalAmount
	}
	return models.Order{
		RecordModel:     newRecord(c),
		UserID:          in.UserID,
		Items:           in.Items,
		TotalAmount:     total,
		Status:          models.OrderPending,
		ShippingAddress: datatypes.NewJSONType(in.ShippingAddress),
	}
}

func buildUser(c *clock, in models.RegisterIn) models.UserAccount {
	return models.UserAccount{
		RecordModel: newRecord(c),
		Email:       NormalizeEmail(in.Email),
		Name:        in.Name,
		Role:        models.RoleCustomer,
		Avatar:      models.AvatarFor(in.Name),
	}
}

func advance(o *models.Order, status models.OrderStatus) error {
	if !o.Status.CanAdvanceTo(status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, status)
	}
	o.Status = status
	return nil
}
