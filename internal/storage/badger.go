package storage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
)

var userPrefix = []byte("user:")

// BadgerRepository implements UserRepository using BadgerDB.
type BadgerRepository struct {
	db  *badger.DB
	log logrus.FieldLogger
}

// NewBadgerRepository creates and initializes a new BadgerDB repository.
// It opens (or creates) the database at the specified path.
func NewBadgerRepository(dbPath string, logger logrus.FieldLogger) (*BadgerRepository, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = &badgerLogger{logger.WithField("component", "badgerdb")}

	db, err := badger.Open(opts)
	if err != nil {
		logger.WithError(err).Error("Failed to open BadgerDB")
		return nil, fmt.Errorf("failed to open badger db at %s: %w", dbPath, err)
	}
	logger.Info("BadgerDB opened successfully at path: ", dbPath)

	return &BadgerRepository{
		db:  db,
		log: logger.WithField("component", "repository"),
	}, nil
}

// Close closes the BadgerDB database connection.
func (r *BadgerRepository) Close() error {
	r.log.Info("Closing BadgerDB...")
	if err := r.db.Close(); err != nil {
		r.log.WithError(err).Error("Error closing BadgerDB")
		return err
	}
	r.log.Info("BadgerDB closed.")
	return nil
}

// generateUserKey creates the key for a subscriber.
// Format: user:{userID}
func generateUserKey(userID int64) []byte {
	return strconv.AppendInt(append([]byte{}, userPrefix...), userID, 10)
}

// parseUserKey is the inverse of generateUserKey.
func parseUserKey(key []byte) (int64, error) {
	return strconv.ParseInt(string(key[len(userPrefix):]), 10, 64)
}

// Register stores the user key with an empty value. Badger's Set is an
// overwrite, so registering twice leaves a single key behind.
func (r *BadgerRepository) Register(ctx context.Context, userID int64) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(generateUserKey(userID), nil)
	})
	if err != nil {
		r.log.WithError(err).WithField("user_id", userID).Error("Failed to register user in BadgerDB")
		return fmt.Errorf("failed to register user %d: %w", userID, err)
	}
	r.log.WithField("user_id", userID).Debug("User registered")
	return nil
}

// ListAll returns every stored user ID using a key-only prefix scan.
func (r *BadgerRepository) ListAll(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.scanUsers(func(key []byte) error {
		id, err := parseUserKey(key)
		if err != nil {
			return fmt.Errorf("malformed user key %q: %w", string(key), err)
		}
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		r.log.WithError(err).Error("Failed to list users from BadgerDB")
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return ids, nil
}

// Count returns the number of stored users.
func (r *BadgerRepository) Count(ctx context.Context) (int, error) {
	n := 0
	err := r.scanUsers(func([]byte) error {
		n++
		return nil
	})
	if err != nil {
		r.log.WithError(err).Error("Failed to count users in BadgerDB")
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (r *BadgerRepository) scanUsers(fn func(key []byte) error) error {
	return r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = userPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(userPrefix); it.ValidForPrefix(userPrefix); it.Next() {
			if err := fn(it.Item().Key()); err != nil {
				return err
			}
		}
		return nil
	})
}

// --- BadgerDB Internal Logger ---

// badgerLogger adapts logrus.FieldLogger to Badger's logger interface.
type badgerLogger struct {
	logger logrus.FieldLogger
}

func (l *badgerLogger) Errorf(f string, v ...interface{}) {
	l.logger.Errorf(f, v...)
}
func (l *badgerLogger) Warningf(f string, v ...interface{}) {
	l.logger.Warningf(f, v...)
}
func (l *badgerLogger) Infof(f string, v ...interface{}) {
	l.logger.Infof(f, v...)
}
func (l *badgerLogger) Debugf(f string, v ...interface{}) {
	l.logger.Debugf(f, v...)
}
