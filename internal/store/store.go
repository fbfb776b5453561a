// Package store reads and writes users and wallet entries through gorm.
package store

import (
	"context"
	"errors"
	"fmt"

	"multicurrency_wallet/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the gorm backed repository used by the handlers and the ledger builder
type Store struct {
	db *gorm.DB
}

// New wraps an open gorm connection
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// FindUser loads a user by primary key
func (s *Store) FindUser(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return &user, nil
}

// FindUserByMail loads a user by login mail id
func (s *Store) FindUserByMail(ctx context.Context, mailID string) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).Where("mail_id = ?", mailID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by mail: %w", err)
	}
	return &user, nil
}

// CreateUser inserts a new user unless the mail id is already taken
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	taken, err := s.mailTaken(ctx, user.MailID, 0)
	if err != nil {
		return err
	}
	if taken {
		return domain.ErrDuplicateMail
	}
	if user.DefaultCurrency == "" {
		user.DefaultCurrency = domain.DefaultCurrency
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		// The unique index still guards against a concurrent registration
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateMail
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateUser applies a partial update keyed by column name
func (s *Store) UpdateUser(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	if mail, ok := fields["mail_id"].(string); ok {
		taken, err := s.mailTaken(ctx, mail, id)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrDuplicateMail
		}
	}
	err := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(fields).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateMail
		}
		return fmt.Errorf("update user %d: %w", id, err)
	}
	return nil
}

// ListOtherUsers returns every user except the given one, ordered by id
func (s *Store) ListOtherUsers(ctx context.Context, id uint) ([]domain.User, error) {
	var users []domain.User
	if err := s.db.WithContext(ctx).Where("id <> ?", id).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// ListLedgerEntries returns the entries the user sent or received, oldest first,
// with both parties' names resolved in the same query
func (s *Store) ListLedgerEntries(ctx context.Context, userID uint) ([]domain.LedgerEntry, error) {
	var entries []domain.LedgerEntry
	err := s.db.WithContext(ctx).
		Table("wallet_entries AS w").
		Select(`w.id, w.debited_to_user_id, w.created_by_user_id, w.currency_type, w.amount, w.created_at,
			COALESCE(s.first_name, '') AS sender_first_name, COALESCE(s.last_name, '') AS sender_last_name,
			COALESCE(r.first_name, '') AS recipient_first_name, COALESCE(r.last_name, '') AS recipient_last_name`).
		Joins("LEFT JOIN users AS s ON s.id = w.created_by_user_id").
		Joins("LEFT JOIN users AS r ON r.id = w.debited_to_user_id").
		Where("w.debited_to_user_id = ? OR w.created_by_user_id = ?", userID, userID).
		Order("w.id").
		Scan(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list ledger entries for user %d: %w", userID, err)
	}
	return entries, nil
}

// CreateWalletEntry records one transfer
func (s *Store) CreateWalletEntry(ctx context.Context, entry *domain.WalletEntry) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(entry).Error; err != nil {
		return fmt.Errorf("create wallet entry: %w", err)
	}
	return nil
}

func (s *Store) mailTaken(ctx context.Context, mailID string, exceptID uint) (bool, error) {
	var count int64
	q := s.db.WithContext(ctx).Model(&domain.User{}).Where("mail_id = ?", mailID)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check mail id: %w", err)
	}
	return count > 0, nil
}
