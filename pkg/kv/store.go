package kv

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by Get when the key has never been written
// or was deleted.
var ErrKeyNotFound = errors.New("kv: key not found")

// Store is a durable whole-value key-value substrate. Values are opaque
// byte blobs; there are no partial updates, callers read-modify-write the
// entire value.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Entry is one persisted key-value pair.
type Entry struct {
	Key        string    `gorm:"primaryKey;type:varchar(255)" json:"key"`
	Value      []byte    `gorm:"type:bytea"                   json:"value"`
	ModifiedAt time.Time `gorm:"autoUpdateTime"               json:"modified_at"`
}

func (Entry) TableName() string { return "kv_entries" }
