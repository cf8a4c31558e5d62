package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/mira-tracker/mira-backend/internal/api/http"
	"github.com/mira-tracker/mira-backend/internal/api/http/middleware"
	authhttp "github.com/mira-tracker/mira-backend/internal/auth/http"
	authmw "github.com/mira-tracker/mira-backend/internal/auth/middleware"
	authservice "github.com/mira-tracker/mira-backend/internal/auth/service"
	trackerhttp "github.com/mira-tracker/mira-backend/internal/tracker/http"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	CORSOrigins []string

	DBPing       httpapi.PingFunc
	SessionsPing httpapi.PingFunc

	Tracker      trackerhttp.Services
	Auth         *authservice.AuthService
	AuthRequired bool

	LoginPerMinute int
	LoginBurst     int
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(cors.New(corsConfig(dep.CORSOrigins)))

	api := r.Group("/api")

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DBPing, dep.SessionsPing)
	healthHandler.RegisterRoutes(api)

	limiter := middleware.NewIPRateLimiter(dep.LoginPerMinute, dep.LoginBurst)
	authHandler := authhttp.New(dep.Auth)
	authHandler.Register(api.Group("/auth"), limiter.Middleware(), authmw.Bearer(dep.Auth, true))

	data := api.Group("", authmw.Bearer(dep.Auth, dep.AuthRequired))
	trackerhttp.New(dep.Tracker).Register(data)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
