package api

import (
	"context"
	"io"

	"multicurrency_wallet/internal/domain"
	"multicurrency_wallet/internal/ledger"
)

// UserStore is the user side of the repository
type UserStore interface {
	FindUser(ctx context.Context, id uint) (*domain.User, error)
	FindUserByMail(ctx context.Context, mailID string) (*domain.User, error)
	CreateUser(ctx context.Context, user *domain.User) error
	UpdateUser(ctx context.Context, id uint, fields map[string]any) error
	ListOtherUsers(ctx context.Context, id uint) ([]domain.User, error)
}

// EntryStore records transfers
type EntryStore interface {
	CreateWalletEntry(ctx context.Context, entry *domain.WalletEntry) error
}

// LedgerBuilder produces the wallet page view
type LedgerBuilder interface {
	Build(ctx context.Context, userID uint, currency string) (*ledger.View, error)
}

// CurrencyLister lists the currency codes users can pick from
type CurrencyLister interface {
	Currencies(ctx context.Context) ([]string, error)
}

// AvatarStore persists uploaded avatars and returns their URL
type AvatarStore interface {
	Save(filename string, r io.Reader) (string, error)
	Remove(url string) error
}
