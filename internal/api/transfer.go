package api

import (
	"context"  // Context for store lookups
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strconv"  // ID formatting
	"strings"  // String manipulation
	"time"     // Timestamps for logs

	"multicurrency_wallet/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Fixed point amounts
	"github.com/sirupsen/logrus"    // Logging library
)

// AmountPlaces is the precision wallet amounts are stored with
const AmountPlaces = 8

// TransferRequest is the send money form
type TransferRequest struct {
	SendTo       uint   `form:"send_to" binding:"required"`                   // Recipient
	ID           uint   `form:"id" binding:"required"`                        // Sender
	CurrencyType string `form:"currency_type" binding:"required,alpha,len=3"` // ISO code
	Amount       string `form:"amount" binding:"required"`                    // Positive decimal
}

// SendMoneyHandler renders the transfer form listing every other user
func SendMoneyHandler(users UserStore, currencies CurrencyLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		var uri userURI
		if err := c.ShouldBindUri(&uri); err != nil {
			renderNotFound(c)
			return
		}
		renderSendMoney(c, users, currencies, uri.UserID, http.StatusOK, "")
	}
}

// SendMoneyToUserHandler validates the form and records one wallet entry
func SendMoneyToUserHandler(users UserStore, entries EntryStore, currencies CurrencyLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TransferRequest // Bind form to struct
		if err := c.ShouldBind(&req); err != nil {
			if req.ID == 0 {
				renderError(c, http.StatusBadRequest, "Invalid transfer", "The transfer form is missing the sender id.")
				return
			}
			if !ownsResource(c, req.ID) {
				return
			}
			renderSendMoney(c, users, currencies, req.ID, http.StatusBadRequest, "Choose a recipient, a currency and an amount")
			return
		}
		if !ownsResource(c, req.ID) {
			return
		}
		ctx := c.Request.Context()

		entry, err := validateTransfer(ctx, users, currencies, req)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidTransfer) {
				logrus.WithFields(logrus.Fields{
					"from_user_id": req.ID,
					"to_user_id":   req.SendTo,
					"amount":       req.Amount,
					"error":        err.Error(),
				}).Info("Transfer rejected")
				renderSendMoney(c, users, currencies, req.ID, http.StatusBadRequest, err.Error())
				return
			}
			renderInternal(c, err, "Transfer failed")
			return
		}

		if err := entries.CreateWalletEntry(ctx, entry); err != nil {
			logrus.WithFields(logrus.Fields{
				"from_user_id": req.ID,
				"to_user_id":   req.SendTo,
				"amount":       entry.Amount.String(),
				"error":        err.Error(),
			}).Error("Transfer failed")
			renderError(c, http.StatusInternalServerError, "Transfer failed", "The transfer could not be recorded.")
			return
		}
		// Log successful transfer
		logrus.WithFields(logrus.Fields{
			"entry_id":     entry.ID,
			"from_user_id": entry.CreatedByUserID,
			"to_user_id":   entry.DebitedToUserID,
			"currency":     entry.CurrencyType,
			"amount":       entry.Amount.String(),
			"timestamp":    time.Now().Format(time.RFC3339),
		}).Info("Transfer transaction")
		c.Redirect(http.StatusFound, "/wallet/"+strconv.FormatUint(uint64(req.ID), 10))
	}
}

// validateTransfer turns the form into a wallet entry or a *domain.TransferError
func validateTransfer(ctx context.Context, users UserStore, currencies CurrencyLister, req TransferRequest) (*domain.WalletEntry, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return nil, &domain.TransferError{Reason: "amount is not a number"}
	}
	if !amount.IsPositive() {
		return nil, &domain.TransferError{Reason: "amount must be greater than zero"}
	}
	if !amount.Equal(amount.Truncate(AmountPlaces)) {
		return nil, &domain.TransferError{Reason: "amount has more than 8 decimal places"}
	}
	if req.SendTo == req.ID {
		return nil, &domain.TransferError{Reason: "cannot send money to yourself"}
	}
	code := strings.ToUpper(req.CurrencyType)
	if codes := availableCurrencies(ctx, currencies); codes != nil && !contains(codes, code) {
		return nil, &domain.TransferError{Reason: "unsupported currency " + code}
	}
	if _, err := users.FindUser(ctx, req.SendTo); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, &domain.TransferError{Reason: "recipient does not exist"}
		}
		return nil, err
	}
	return &domain.WalletEntry{
		DebitedToUserID: req.SendTo,
		CreatedByUserID: req.ID,
		CurrencyType:    code,
		Amount:          amount,
	}, nil
}

// renderSendMoney renders the transfer form for id
func renderSendMoney(c *gin.Context, users UserStore, currencies CurrencyLister, id uint, status int, message string) {
	ctx := c.Request.Context()
	user, err := users.FindUser(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			renderNotFound(c)
			return
		}
		renderInternal(c, err, "Failed to load user")
		return
	}
	others, err := users.ListOtherUsers(ctx, id)
	if err != nil {
		renderInternal(c, err, "Failed to list users")
		return
	}
	c.HTML(status, "send_money.html", page("Send money", user, gin.H{
		"Error":    message,
		"UserList": others,
		"CurrencySelect": currencySelect{
			Name:       "currency_type",
			Selected:   user.DefaultCurrency,
			Currencies: availableCurrencies(ctx, currencies),
		},
	}))
}

// ownsResource rejects requests acting on another user's data
func ownsResource(c *gin.Context, id uint) bool {
	sessionID, ok := c.Get("userID")
	if uid, isUint := sessionID.(uint); ok && isUint && uid == id {
		return true
	}
	renderError(c, http.StatusForbidden, "Forbidden", "You can only act on your own account.")
	c.Abort()
	return false
}
