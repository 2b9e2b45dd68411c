package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"

	"custemoapi/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"
)

// LocalStore keeps records in an embedded badger database. Every record lives
// under <kind>/id/<id>; listing goes through index keys whose middle segment
// is an inverted timestamp, so a forward prefix scan is newest first.
type LocalStore struct {
	db    *badger.DB
	clock *clock
}

// OpenLocalStore opens (or creates) the database at path. An empty path keeps
// everything in memory.
func OpenLocalStore(path string) (*LocalStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(badgerLogger{})
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open local record store: %w", err)
	}
	return &LocalStore{db: db, clock: newClock()}, nil
}

func (s *LocalStore) Close() error {
	return s.db.Close()
}

const (
	kindDesign = "design"
	kindOrder  = "order"
	kindUser   = "user"
)

func primaryKey(kind, id string) []byte {
	return []byte(kind + "/id/" + id)
}

func emailKey(email string) []byte {
	return []byte(kindUser + "/email/" + NormalizeEmail(email))
}

func allPrefix(kind string) []byte {
	return []byte(kind + "/all/")
}

func userPrefix(kind, userID string) []byte {
	return []byte(kind + "/by-user/" + url.PathEscape(userID) + "/")
}

func indexSuffix(rec models.RecordModel) string {
	return fmt.Sprintf("%020d/%s", math.MaxInt64-rec.CreatedAt.UnixNano(), rec.ID)
}

// putIndexed writes value under its primary key plus the global and per-user
// listing indexes.
func putIndexed(txn *badger.Txn, kind, userID string, rec models.RecordModel, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := txn.Set(primaryKey(kind, rec.ID), raw); err != nil {
		return err
	}
	suffix := indexSuffix(rec)
	if err := txn.Set(append(allPrefix(kind), suffix...), []byte(rec.ID)); err != nil {
		return err
	}
	return txn.Set(append(userPrefix(kind, userID), suffix...), []byte(rec.ID))
}

func getJSON(txn *badger.Txn, key []byte, out any) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}

// scanIndex loads every record referenced under prefix, in key order.
func scanIndex[T any](db *badger.DB, kind string, prefix []byte) ([]T, error) {
	out := []T{}
	err := db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			id, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			var rec T
			if err := getJSON(txn, primaryKey(kind, string(id)), &rec); err != nil {
				return fmt.Errorf("index %s points at %s: %w", it.Item().Key(), id, err)
			}
			out = append(out, rec)
		}
		return nil
	})
	return out, err
}

func (s *LocalStore) SaveDesign(ctx context.Context, in models.SaveDesignIn) (*models.SavedDesign, error) {
	design := buildDesign(s.clock, in)
	err := s.db.Update(func(txn *badger.Txn) error {
		return putIndexed(txn, kindDesign, design.UserID, design.RecordModel, design)
	})
	if err != nil {
		return nil, err
	}
	return &design, nil
}

func (s *LocalStore) ListDesignsByUser(ctx context.Context, userID string) ([]models.SavedDesign, error) {
	return scanIndex[models.SavedDesign](s.db, kindDesign, userPrefix(kindDesign, userID))
}

func (s *LocalStore) ListAllDesigns(ctx context.Context) ([]models.SavedDesign, error) {
	return scanIndex[models.SavedDesign](s.db, kindDesign, allPrefix(kindDesign))
}

func (s *LocalStore) CreateOrder(ctx context.Context, in models.CreateOrderIn) (*models.Order, error) {
	order := buildOrder(s.clock, in)
	err := s.db.Update(func(txn *badger.Txn) error {
		return putIndexed(txn, kindOrder, order.UserID, order.RecordModel, order)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *LocalStore) ListOrders(ctx context.Context, scope models.OrderScope) ([]models.Order, error) {
	if scope.All() {
		return scanIndex[models.Order](s.db, kindOrder, allPrefix(kindOrder))
	}
	return scanIndex[models.Order](s.db, kindOrder, userPrefix(kindOrder, scope.UserID))
}

func (s *LocalStore) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error) {
	var order models.Order
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := getJSON(txn, primaryKey(kindOrder, orderID), &order); err != nil {
			return err
		}
		if err := advance(&order, status); err != nil {
			return err
		}
		raw, err := json.Marshal(order)
		if err != nil {
			return err
		}
		return txn.Set(primaryKey(kindOrder, orderID), raw)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *LocalStore) FindUser(ctx context.Context, id string) (*models.UserAccount, error) {
	var user models.UserAccount
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, primaryKey(kindUser, id), &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *LocalStore) FindUserByEmail(ctx context.Context, email string) (*models.UserAccount, error) {
	var user models.UserAccount
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey(email))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return getJSON(txn, primaryKey(kindUser, string(id)), &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *LocalStore) RegisterUser(ctx context.Context, in models.RegisterIn) (*models.UserAccount, error) {
	user := buildUser(s.clock, in)
	if err := s.putUser(user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *LocalStore) seedUser(ctx context.Context, user models.UserAccount) error {
	user.Email = NormalizeEmail(user.Email)
	user.CreatedAt = s.clock.Next()
	return s.putUser(user)
}

func (s *LocalStore) putUser(user models.UserAccount) error {
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(emailKey(user.Email))
		if err == nil {
			return ErrDuplicateEmail
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		raw, err := json.Marshal(user)
		if err != nil {
			return err
		}
		if err := txn.Set(primaryKey(kindUser, user.ID), raw); err != nil {
			return err
		}
		return txn.Set(emailKey(user.Email), []byte(user.ID))
	})
}

// badgerLogger routes badger's own logging through zerolog.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	log.Error().Str("component", "badger").Msgf(format, args...)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	log.Warn().Str("component", "badger").Msgf(format, args...)
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	log.Debug().Str("component", "badger").Msgf(format, args...)
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	log.Trace().Str("component", "badger").Msgf(format, args...)
}
