package kv

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pitabwire/frame/datastore/pool"
)

// Repository is the database-backed Store implementation.
type Repository struct {
	pool pool.Pool
}

// NewRepository creates a kv repository over the given datastore pool.
func NewRepository(pool pool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) db(ctx context.Context, readOnly bool) *gorm.DB {
	return r.pool.DB(ctx, readOnly)
}

// Migrate creates the kv_entries table if it does not exist.
func (r *Repository) Migrate(ctx context.Context) error {
	return r.db(ctx, false).AutoMigrate(&Entry{})
}

// Get returns the stored value for key, or ErrKeyNotFound.
func (r *Repository) Get(ctx context.Context, key string) ([]byte, error) {
	var e Entry
	err := r.db(ctx, true).Where("key = ?", key).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return e.Value, nil
}

// Set writes the whole value for key, inserting or replacing it.
func (r *Repository) Set(ctx context.Context, key string, value []byte) error {
	e := Entry{Key: key, Value: value, ModifiedAt: time.Now().UTC()}
	return r.db(ctx, false).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "modified_at"}),
		}).
		Create(&e).Error
}

// Delete removes the key. Deleting an absent key is not an error.
func (r *Repository) Delete(ctx context.Context, key string) error {
	return r.db(ctx, false).Where("key = ?", key).Delete(&Entry{}).Error
}
