package db

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

const (
	maxTxAttempts  = 3
	txRetryBackoff = 25 * time.Millisecond
)

// RunSerializable executes fn inside a serializable transaction and retries the
// whole callback on isolation conflicts. Callers must keep fn free of side
// effects outside the transaction handle: it may run more than once.
func RunSerializable(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var opts []*sql.TxOptions
	// SQLite transactions are serializable already and its drivers reject
	// explicit isolation levels.
	if db.Dialector != nil && db.Dialector.Name() != "sqlite" {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelSerializable})
	}

	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = db.WithContext(ctx).Transaction(fn, opts...)
		if err == nil || !IsSerializationErr(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(txRetryBackoff * time.Duration(attempt)):
		}
	}
	return err
}
