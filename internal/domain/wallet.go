package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletEntry Model: one transfer from CreatedByUserID to DebitedToUserID
type WalletEntry struct {
	ID              uint            `gorm:"primaryKey"`                   // Primary key
	DebitedToUserID uint            `gorm:"index;not null"`               // Recipient
	CreatedByUserID uint            `gorm:"index;not null"`               // Sender
	CurrencyType    string          `gorm:"size:10;not null;default:USD"` // Currency the amount is expressed in
	Amount          decimal.Decimal `gorm:"type:decimal(20,8);not null"`  // Unsigned amount, 8 fractional digits
	CreatedAt       time.Time       `gorm:"autoCreateTime"`               // Transfer time

	DebitedToUser User `gorm:"foreignKey:DebitedToUserID" json:"-"`
	CreatedByUser User `gorm:"foreignKey:CreatedByUserID" json:"-"`
}

// LedgerEntry is a wallet entry joined with both parties' names
type LedgerEntry struct {
	ID                 uint
	DebitedToUserID    uint
	CreatedByUserID    uint
	CurrencyType       string
	Amount             decimal.Decimal
	CreatedAt          time.Time
	SenderFirstName    string
	SenderLastName     string
	RecipientFirstName string
	RecipientLastName  string
}

// SenderName is the display name of the user who created the entry
func (e LedgerEntry) SenderName() string {
	return e.SenderFirstName + " " + e.SenderLastName
}

// RecipientName is the display name of the user the entry was sent to
func (e LedgerEntry) RecipientName() string {
	return e.RecipientFirstName + " " + e.RecipientLastName
}
