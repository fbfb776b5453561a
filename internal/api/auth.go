package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strconv"  // ID formatting
	"strings"  // String manipulation

	"multicurrency_wallet/internal/domain" // Importing domain models
	"multicurrency_wallet/internal/utils"  // Session tokens

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
)

// RegisterRequest is the registration form
type RegisterRequest struct {
	FirstName string `form:"first_name" binding:"required,max=255"`    // Given name
	LastName  string `form:"last_name" binding:"required,max=255"`     // Family name
	MailID    string `form:"mail_id" binding:"required,email,max=120"` // Login identifier
	Password  string `form:"password" binding:"required,min=6,max=72"` // bcrypt only reads 72 bytes
}

// LoginRequest is the login form
type LoginRequest struct {
	MailID   string `form:"mail_id" binding:"required"`  // Login identifier
	Password string `form:"password" binding:"required"` // Plain password
}

// IndexHandler renders the landing page
func IndexHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", page("", nil, nil))
	}
}

// LoginPageHandler renders the login form
func LoginPageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "login.html", page("Log in", nil, gin.H{"MailID": ""}))
	}
}

// LoginHandler checks credentials, sets the session cookie and redirects to the wallet
func LoginHandler(users UserStore, jwtSecret string, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind form to struct
		if err := c.ShouldBind(&req); err != nil {
			c.HTML(http.StatusBadRequest, "login.html", page("Log in", nil, gin.H{
				"MailID": req.MailID,
				"Error":  "Mail id and password are required",
			}))
			return
		}
		mail := strings.ToLower(strings.TrimSpace(req.MailID))
		user, err := users.FindUserByMail(c.Request.Context(), mail)
		if err == nil {
			err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password))
		}
		if err != nil {
			if !errors.Is(err, domain.ErrUserNotFound) && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
				renderInternal(c, err, "Login failed")
				return
			}
			logrus.WithField("mail_id", mail).Info("Rejected login")
			c.HTML(http.StatusUnauthorized, "login.html", page("Log in", nil, gin.H{
				"MailID": req.MailID,
				"Error":  domain.ErrInvalidCredentials.Error(),
			}))
			return
		}
		// Issue the session token
		token, err := utils.GenerateJWT(user.ID, user.MailID, jwtSecret, utils.SessionTTL)
		if err != nil {
			renderInternal(c, err, "Failed to start session")
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(utils.SessionCookie, token, int(utils.SessionTTL.Seconds()), "/", "", secureCookie, true)
		c.Redirect(http.StatusFound, "/wallet/"+strconv.FormatUint(uint64(user.ID), 10))
	}
}

// LogoutHandler clears the session cookie
func LogoutHandler(secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(utils.SessionCookie, "", -1, "/", "", secureCookie, true)
		c.Redirect(http.StatusFound, "/login")
	}
}

// RegisterPageHandler renders the registration form
func RegisterPageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "register.html", page("Register", nil, gin.H{"Form": RegisterRequest{}}))
	}
}

// RegisterHandler creates a user unless the mail id is already registered
func RegisterHandler(users UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind form to struct
		if err := c.ShouldBind(&req); err != nil {
			req.Password = ""
			c.HTML(http.StatusBadRequest, "register.html", page("Register", nil, gin.H{
				"Form":  req,
				"Error": "Please fill in every field with a valid value",
			}))
			return
		}
		// Hash the password before it reaches the store
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			renderInternal(c, err, "Failed to hash password")
			return
		}
		user := domain.User{
			FirstName:       strings.TrimSpace(req.FirstName),
			LastName:        strings.TrimSpace(req.LastName),
			MailID:          strings.ToLower(strings.TrimSpace(req.MailID)),
			Password:        string(hash),
			DefaultCurrency: domain.DefaultCurrency,
		}
		if err := users.CreateUser(c.Request.Context(), &user); err != nil {
			if errors.Is(err, domain.ErrDuplicateMail) {
				req.Password = ""
				c.HTML(http.StatusConflict, "register.html", page("Register", nil, gin.H{
					"Form":  req,
					"Error": "An account with this mail id already exists, please log in",
				}))
				return
			}
			renderInternal(c, err, "Failed to register user")
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,
			"mail_id": user.MailID,
		}).Info("User registered")
		c.Redirect(http.StatusFound, "/login")
	}
}
