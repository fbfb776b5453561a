package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strconv"  // ID formatting
	"strings"  // String manipulation

	"multicurrency_wallet/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
)

// EditProfileRequest is the multipart profile form; blank fields are left unchanged
type EditProfileRequest struct {
	ID              uint   `form:"id" binding:"required"`                            // Edited user
	FirstName       string `form:"first_name" binding:"omitempty,max=255"`           // Given name
	LastName        string `form:"last_name" binding:"omitempty,max=255"`            // Family name
	MailID          string `form:"mail_id" binding:"omitempty,email,max=120"`        // Login identifier
	Password        string `form:"password" binding:"omitempty,min=6,max=72"`        // New password
	DefaultCurrency string `form:"default_currency" binding:"omitempty,alpha,len=3"` // ISO code
}

// ProfileHandler renders the profile form
func ProfileHandler(users UserStore, currencies CurrencyLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		var uri userURI
		if err := c.ShouldBindUri(&uri); err != nil {
			renderNotFound(c)
			return
		}
		renderProfile(c, users, currencies, uri.UserID, http.StatusOK, "")
	}
}

// EditProfileHandler applies a partial profile update with an optional avatar
func EditProfileHandler(users UserStore, avatars AvatarStore, currencies CurrencyLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req EditProfileRequest // Bind multipart form to struct
		if err := c.ShouldBind(&req); err != nil {
			if req.ID == 0 {
				renderError(c, http.StatusBadRequest, "Invalid request", "The profile form is missing the user id.")
				return
			}
			if !ownsResource(c, req.ID) {
				return
			}
			renderProfile(c, users, currencies, req.ID, http.StatusBadRequest, "Please check the values you entered")
			return
		}
		if !ownsResource(c, req.ID) {
			return
		}
		ctx := c.Request.Context()
		if _, err := users.FindUser(ctx, req.ID); err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				renderNotFound(c)
				return
			}
			renderInternal(c, err, "Failed to load profile")
			return
		}

		fields := map[string]any{} // Columns to update
		for column, value := range map[string]string{
			"first_name": strings.TrimSpace(req.FirstName),
			"last_name":  strings.TrimSpace(req.LastName),
			"mail_id":    strings.ToLower(strings.TrimSpace(req.MailID)),
		} {
			if value != "" {
				fields[column] = value
			}
		}
		if req.DefaultCurrency != "" {
			code := strings.ToUpper(req.DefaultCurrency)
			if codes := availableCurrencies(ctx, currencies); codes != nil && !contains(codes, code) {
				renderProfile(c, users, currencies, req.ID, http.StatusBadRequest, "Unsupported currency "+code)
				return
			}
			fields["default_currency"] = code
		}
		if req.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
			if err != nil {
				renderInternal(c, err, "Failed to hash password")
				return
			}
			fields["password"] = string(hash)
		}

		// The avatar is optional; a rejected file aborts the whole edit
		file, err := c.FormFile("avtar")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			renderProfile(c, users, currencies, req.ID, http.StatusBadRequest, "Could not read the uploaded file")
			return
		case file.Filename != "":
			src, err := file.Open()
			if err != nil {
				renderInternal(c, err, "Failed to open upload")
				return
			}
			url, err := avatars.Save(file.Filename, src)
			_ = src.Close()
			if err != nil {
				if errors.Is(err, domain.ErrInvalidUpload) {
					logrus.WithFields(logrus.Fields{"user_id": req.ID, "error": err.Error()}).Info("Avatar rejected")
					renderProfile(c, users, currencies, req.ID, http.StatusBadRequest, "Allowed image types are png, jpg, jpeg, gif")
					return
				}
				renderInternal(c, err, "Failed to store avatar")
				return
			}
			fields["avatar"] = url
		}

		if err := users.UpdateUser(ctx, req.ID, fields); err != nil {
			if url, ok := fields["avatar"].(string); ok {
				if rmErr := avatars.Remove(url); rmErr != nil {
					logrus.WithFields(logrus.Fields{"user_id": req.ID, "error": rmErr.Error()}).Warn("Failed to remove unused avatar")
				}
			}
			if errors.Is(err, domain.ErrDuplicateMail) {
				renderProfile(c, users, currencies, req.ID, http.StatusConflict, "That mail id belongs to another account")
				return
			}
			renderInternal(c, err, "Failed to update profile")
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id": req.ID,
			"fields":  len(fields),
		}).Info("Profile updated")
		c.Redirect(http.StatusFound, "/user_profile/"+strconv.FormatUint(uint64(req.ID), 10))
	}
}

// renderProfile loads the user and renders the profile form with an optional error
func renderProfile(c *gin.Context, users UserStore, currencies CurrencyLister, id uint, status int, message string) {
	ctx := c.Request.Context()
	user, err := users.FindUser(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			renderNotFound(c)
			return
		}
		renderInternal(c, err, "Failed to load profile")
		return
	}
	c.HTML(status, "profile.html", page("Profile", user, gin.H{
		"Error": message,
		"CurrencySelect": currencySelect{
			Name:       "default_currency",
			Selected:   user.DefaultCurrency,
			Currencies: availableCurrencies(ctx, currencies),
		},
	}))
}
