package http

import (
	"net/http"
	"time"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/transport/http/middleware"
	authsvc "github.com/Miraines/MoonyAndStarry/account-service/internal/app/auth/service"
	usersvc "github.com/Miraines/MoonyAndStarry/account-service/internal/app/user/service"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/model"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/mail"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Route binds a handler to a path together with its access policy.
type Route struct {
	Method string
	Path   string
	middleware.Policy
	Handler gin.HandlerFunc
}

type Deps struct {
	Auth    authsvc.Service
	Users   usersvc.Service
	Mail    mail.Notifier
	Health  map[string]Pinger
	Metrics interface {
		middleware.RequestObserver
		Handler() http.Handler
	}
	Log *zap.Logger

	AllowedOrigins   []string
	AllowCredentials bool
}

var (
	public        = middleware.Policy{}
	authenticated = middleware.Policy{Auth: true}
	adminOnly     = middleware.Policy{Auth: true, Roles: []model.Role{model.RoleAdmin}}
)

func Routes(d Deps) []Route {
	v := dto.NewValidator()
	auth := NewAuthHandler(d.Auth, v)
	users := NewUserHandler(d.Users, v)
	mails := NewMailHandler(d.Mail, v)
	health := NewHealthHandler(d.Log, d.Health)

	routes := []Route{
		{http.MethodPost, "/auth/v1/signup", public, auth.SignUp},
		{http.MethodPost, "/auth/v1/signin", public, auth.SignIn},
		{http.MethodPost, "/auth/v1/signout", authenticated, auth.SignOut},
		{http.MethodPost, "/auth/v1/slide-session", middleware.Policy{Auth: true, AllowExpired: true}, auth.SlideSession},
		{http.MethodDelete, "/auth/v1/delete", authenticated, auth.Delete},

		{http.MethodGet, "/user/v1/profile", authenticated, users.Profile},
		{http.MethodPut, "/user/v1/profile", authenticated, users.UpdateProfile},
		{http.MethodPatch, "/user/v1/profile", authenticated, users.UpdateProfile},
		{http.MethodGet, "/user/v1", authenticated, users.ByID},
		{http.MethodGet, "/user/v1/users", adminOnly, users.List},

		{http.MethodGet, "/health", public, health.Health},
	}
	for _, tmpl := range []mail.Template{
		mail.TemplateConfirmation, mail.TemplateWelcome, mail.TemplateGoodbye, mail.TemplateResetPassword,
	} {
		routes = append(routes, Route{http.MethodPost, "/mail/v1/" + string(tmpl), public, mails.Send(tmpl)})
	}
	return routes
}

func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(d.Log))
	if d.Metrics != nil {
		router.Use(middleware.Metrics(d.Metrics))
		router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	// cors refuses a config with no origin at all
	if len(d.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: d.AllowedOrigins,
			AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders: []string{
				"Origin", "Content-Type", "Accept",
				"Authorization", middleware.RefreshHeader,
				"X-Requested-With", middleware.RequestIDHeader,
			},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
			AllowCredentials: d.AllowCredentials,
			MaxAge:           12 * time.Hour,
		}))
	}

	for _, r := range Routes(d) {
		router.Handle(r.Method, r.Path, middleware.Guard(d.Auth, r.Policy), r.Handler)
	}
	return router
}
