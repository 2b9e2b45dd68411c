package store

import (
	"context"
	"errors"

	"custemoapi/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLStore keeps records in Postgres through gorm. The connection is expected
// to be migrated already (dbhelper.SetupDB).
type SQLStore struct {
	db    *gorm.DB
	clock *clock
}

func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db, clock: newClock()}
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *SQLStore) SaveDesign(ctx context.Context, in models.SaveDesignIn) (*models.SavedDesign, error) {
	design := buildDesign(s.clock, in)
	if err := s.db.WithContext(ctx).Create(&design).Error; err != nil {
		return nil, err
	}
	return &design, nil
}

func (s *SQLStore) ListDesignsByUser(ctx context.Context, userID string) ([]models.SavedDesign, error) {
	designs := []models.SavedDesign{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&designs).Error
	return designs, err
}

func (s *SQLStore) ListAllDesigns(ctx context.Context) ([]models.SavedDesign, error) {
	designs := []models.SavedDesign{}
	err := s.db.WithContext(ctx).Order("created_at desc, id desc").Find(&designs).Error
	return designs, err
}

func (s *SQLStore) CreateOrder(ctx context.Context, in models.CreateOrderIn) (*models.Order, error) {
	order := buildOrder(s.clock, in)
	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *SQLStore) ListOrders(ctx context.Context, scope models.OrderScope) ([]models.Order, error) {
	orders := []models.Order{}
	q := s.db.WithContext(ctx).Model(&models.Order{})
	if !scope.All() {
		q = q.Where("user_id = ?", scope.UserID)
	}
	err := q.Order("created_at desc, id desc").Find(&orders).Error
	return orders, err
}

func (s *SQLStore) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, "id = ?", orderID).Error
		if err != nil {
			return notFound(err)
		}
		if err := advance(&order, status); err != nil {
			return err
		}
		return tx.Model(&order).Update("status", order.Status).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *SQLStore) FindUser(ctx context.Context, id string) (*models.UserAccount, error) {
	var user models.UserAccount
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *SQLStore) FindUserByEmail(ctx context.Context, email string) (*models.UserAccount, error) {
	var user models.UserAccount
	if err := s.db.WithContext(ctx).First(&user, "email = ?", NormalizeEmail(email)).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *SQLStore) RegisterUser(ctx context.Context, in models.RegisterIn) (*models.UserAccount, error) {
	user := buildUser(s.clock, in)
	if err := s.createUser(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *SQLStore) seedUser(ctx context.Context, user models.UserAccount) error {
	user.Email = NormalizeEmail(user.Email)
	user.CreatedAt = s.clock.Next()
	return s.createUser(ctx, &user)
}

func (s *SQLStore) createUser(ctx context.Context, user *models.UserAccount) error {
	err := s.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEmail
	}
	return err
}
