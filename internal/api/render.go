package api

import (
	"context"  // Context for currency lookups
	"net/http" // HTTP status codes

	"multicurrency_wallet/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// currencySelect feeds the currency_select template
type currencySelect struct {
	Name       string   // Form field name
	Selected   string   // Preselected code
	Currencies []string // Options, empty renders a free text input
}

// page builds template data with the keys the layout always reads
func page(title string, user *domain.User, extra gin.H) gin.H {
	data := gin.H{
		"Title":  title,
		"User":   user,
		"Error":  "",
		"Notice": "",
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

// renderError shows the generic error page
func renderError(c *gin.Context, status int, title, message string) {
	c.HTML(status, "error.html", page(title, nil, gin.H{"Message": message}))
}

// renderNotFound is used whenever a user id does not resolve
func renderNotFound(c *gin.Context) {
	renderError(c, http.StatusNotFound, "User not found", "There is no user with that id.")
}

// renderInternal logs err and shows a 500 page
func renderInternal(c *gin.Context, err error, msg string) {
	logrus.WithFields(logrus.Fields{
		"path":  c.Request.URL.Path,
		"error": err.Error(),
	}).Error(msg)
	renderError(c, http.StatusInternalServerError, "Something went wrong", msg)
}

// availableCurrencies returns the codes for selection inputs; a feed outage
// only downgrades the input to free text
func availableCurrencies(ctx context.Context, lister CurrencyLister) []string {
	codes, err := lister.Currencies(ctx)
	if err != nil {
		logrus.WithField("error", err.Error()).Warn("Currency list unavailable")
		return nil
	}
	return codes
}

// contains reports whether code is in codes
func contains(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
