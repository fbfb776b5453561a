package api

import (
	"multicurrency_wallet/internal/middleware" // Session and ownership checks
	"multicurrency_wallet/web"                 // Embedded templates

	"github.com/gin-gonic/gin" // Gin web framework
)

// RouterConfig carries every collaborator the routes need
type RouterConfig struct {
	Users      UserStore
	Entries    EntryStore
	Ledger     LedgerBuilder
	Currencies CurrencyLister
	Avatars    AvatarStore

	JWTSecret      string // Session signing secret
	SecureCookies  bool   // Mark the session cookie Secure
	UploadDir      string // Served under /uploads when set
	MaxUploadBytes int64  // Multipart memory limit
	TrustedProxies []string
}

// NewRouter builds the gin engine with templates, middleware and routes
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}

	r := gin.Default() // Gin router instance with logger and recovery
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)
	if cfg.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = cfg.MaxUploadBytes
	}
	if cfg.UploadDir != "" {
		r.Static("/uploads", cfg.UploadDir) // Stored avatars
	}

	// Public pages
	r.GET("/", IndexHandler())
	r.GET("/login", LoginPageHandler())
	r.POST("/login", LoginHandler(cfg.Users, cfg.JWTSecret, cfg.SecureCookies))
	r.GET("/logout", LogoutHandler(cfg.SecureCookies))
	r.GET("/register", RegisterPageHandler())
	r.POST("/register", RegisterHandler(cfg.Users))

	// Pages bound to a user id in the path: only that user may open them
	owned := r.Group("/")
	owned.Use(middleware.SessionMiddleware(cfg.JWTSecret, cfg.SecureCookies), middleware.OwnerOnlyMiddleware("user_id"))
	owned.GET("/wallet/:user_id", WalletHandler(cfg.Ledger, cfg.Currencies))
	owned.GET("/user_profile/:user_id", ProfileHandler(cfg.Users, cfg.Currencies))
	owned.GET("/send_money/:user_id", SendMoneyHandler(cfg.Users, cfg.Currencies))

	// Form posts carry the acting user id in the body and check it in the handler
	forms := r.Group("/")
	forms.Use(middleware.SessionMiddleware(cfg.JWTSecret, cfg.SecureCookies))
	forms.POST("/edit_profile", EditProfileHandler(cfg.Users, cfg.Avatars, cfg.Currencies))
	forms.POST("/send_money_to_user", SendMoneyToUserHandler(cfg.Users, cfg.Entries, cfg.Currencies))

	return r, nil
}
