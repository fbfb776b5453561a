package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"multicurrency_wallet/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
)

// userURI binds the :user_id path segment
type userURI struct {
	UserID uint `uri:"user_id" binding:"required"` // Viewed user
}

// walletQuery binds the optional display currency
type walletQuery struct {
	CurrencyType string `form:"currency_type" binding:"omitempty,alpha,len=3"` // ISO code
}

// WalletHandler renders a user's ledger in the requested or default currency
func WalletHandler(builder LedgerBuilder, currencies CurrencyLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		var uri userURI
		if err := c.ShouldBindUri(&uri); err != nil {
			renderNotFound(c)
			return
		}
		var q walletQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			renderError(c, http.StatusBadRequest, "Unknown currency", "currency_type must be a three letter currency code.")
			return
		}
		view, err := builder.Build(c.Request.Context(), uri.UserID, q.CurrencyType)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				renderNotFound(c)
				return
			}
			renderInternal(c, err, "Failed to load wallet")
			return
		}
		c.HTML(http.StatusOK, "wallet.html", page("Wallet", &view.User, gin.H{
			"View": view,
			"CurrencySelect": currencySelect{
				Name:       "currency_type",
				Selected:   view.Currency,
				Currencies: availableCurrencies(c.Request.Context(), currencies),
			},
		}))
	}
}
