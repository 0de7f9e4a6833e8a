package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/credgate/internal/models"
	"github.com/iudanet/credgate/internal/server/storage"
)

// userRecord is the value stored under the email key
type userRecord struct {
	PasswordHash string `json:"password_hash"`
	ID           int64  `json:"id"`
	Counter      int64  `json:"counter"`
}

// CreateUser inserts a new user and returns its ID
func (s *Storage) CreateUser(ctx context.Context, email, passwordHash string) (int64, error) {
	var id int64

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketUsers)
		key := []byte(email)

		if b.Get(key) != nil {
			return storage.ErrUserAlreadyExists
		}

		seq, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate id: %w", err)
		}

		data, err := json.Marshal(userRecord{ID: int64(seq), PasswordHash: passwordHash})
		if err != nil {
			return fmt.Errorf("failed to marshal user: %w", err)
		}

		if err := b.Put(key, data); err != nil {
			return fmt.Errorf("failed to put user: %w", err)
		}

		id = int64(seq)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

// GetUserByEmail retrieves user by email
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user *models.User

	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketUsers).Get([]byte(email))
		if data == nil {
			return storage.ErrUserNotFound
		}

		var rec userRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("failed to unmarshal user: %w", err)
		}

		user = &models.User{
			ID:           rec.ID,
			Email:        email,
			PasswordHash: rec.PasswordHash,
			Counter:      rec.Counter,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// UpdatePasswordHash replaces the password hash and returns rows affected
func (s *Storage) UpdatePasswordHash(ctx context.Context, email, passwordHash string) (int64, error) {
	var rows int64

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketUsers)
		key := []byte(email)

		data := b.Get(key)
		if data == nil {
			return nil
		}

		var rec userRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("failed to unmarshal user: %w", err)
		}
		rec.PasswordHash = passwordHash

		updated, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal user: %w", err)
		}

		if err := b.Put(key, updated); err != nil {
			return fmt.Errorf("failed to put user: %w", err)
		}

		rows = 1
		return nil
	})
	if err != nil {
		return 0, err
	}

	return rows, nil
}
