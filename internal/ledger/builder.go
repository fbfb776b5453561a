// Package ledger builds the per-user transaction view shown on the wallet page.
package ledger

import (
	"context"
	"strings"
	"time"

	"multicurrency_wallet/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Store is the read side the builder needs
type Store interface {
	FindUser(ctx context.Context, id uint) (*domain.User, error)
	ListLedgerEntries(ctx context.Context, userID uint) ([]domain.LedgerEntry, error)
}

// Converter turns an amount in one currency into another
type Converter interface {
	Convert(ctx context.Context, from, to string, amount decimal.Decimal) (decimal.Decimal, error)
}

// Row is one ledger line as seen by the viewer
type Row struct {
	ID             uint
	DebitedToUser  string // recipient name, set when the viewer sent the money
	CreditedByUser string // sender name, set when the viewer received the money

	CurrencyType string          // currency of the original transfer
	Amount       decimal.Decimal // original amount

	ConvertedAmount     decimal.Decimal // amount in the display currency
	ConversionAvailable bool            // false leaves ConvertedAmount zero

	DebitedMoney   decimal.NullDecimal // original amount when the viewer sent it
	CreditedAmount decimal.NullDecimal // original amount when the viewer received it

	CreatedAt time.Time
}

// IsDebit reports whether the viewer sent this transfer
func (r Row) IsDebit() bool { return r.DebitedMoney.Valid }

// IsCredit reports whether the viewer received this transfer
func (r Row) IsCredit() bool { return r.CreditedAmount.Valid }

// View is everything the wallet page renders
type View struct {
	User     domain.User
	Currency string
	Rows     []Row

	// Sums of converted amounts; rows that could not be converted are left out
	TotalDebited  decimal.Decimal
	TotalCredited decimal.Decimal
	Unconverted   int
}

// Builder composes the store and the converter into a View
type Builder struct {
	store     Store
	converter Converter
}

// NewBuilder wires a builder
func NewBuilder(store Store, converter Converter) *Builder {
	return &Builder{store: store, converter: converter}
}

// Build returns the ledger of userID in the given display currency, or in the
// user's default currency when currency is blank. Rows keep insertion order.
func (b *Builder) Build(ctx context.Context, userID uint, currency string) (*View, error) {
	user, err := b.store.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries, err := b.store.ListLedgerEntries(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &View{
		User:     *user,
		Currency: DisplayCurrency(currency, user.DefaultCurrency),
		Rows:     make([]Row, 0, len(entries)),
	}

	for _, e := range entries {
		row := Row{
			ID:           e.ID,
			CurrencyType: e.CurrencyType,
			Amount:       e.Amount,
			CreatedAt:    e.CreatedAt,
		}

		// A self transfer satisfies both checks and shows on both sides
		if e.CreatedByUserID == userID {
			row.DebitedMoney = decimal.NewNullDecimal(e.Amount)
			row.DebitedToUser = e.RecipientName()
		}
		if e.DebitedToUserID == userID {
			row.CreditedAmount = decimal.NewNullDecimal(e.Amount)
			row.CreditedByUser = e.SenderName()
		}

		converted, err := b.converter.Convert(ctx, e.CurrencyType, view.Currency, e.Amount)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id":  userID,
				"entry_id": e.ID,
				"from":     e.CurrencyType,
				"to":       view.Currency,
				"error":    err.Error(),
			}).Warn("Conversion unavailable for ledger row")
			view.Unconverted++
		} else {
			row.ConvertedAmount = converted
			row.ConversionAvailable = true
			if row.IsDebit() {
				view.TotalDebited = view.TotalDebited.Add(converted)
			}
			if row.IsCredit() {
				view.TotalCredited = view.TotalCredited.Add(converted)
			}
		}

		view.Rows = append(view.Rows, row)
	}
	return view, nil
}

// DisplayCurrency picks the requested currency, falling back to the user's default
func DisplayCurrency(requested, fallback string) string {
	if c := strings.ToUpper(strings.TrimSpace(requested)); c != "" {
		return c
	}
	if c := strings.ToUpper(strings.TrimSpace(fallback)); c != "" {
		return c
	}
	return domain.DefaultCurrency
}
