package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"authcore/internal/config"
	"authcore/internal/database"
	"authcore/internal/domain"
	"authcore/internal/middleware"
	"authcore/internal/modules/admin"
	"authcore/internal/modules/auth"
	"authcore/internal/repository"
	"authcore/internal/session"
	"authcore/internal/token"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.SessionToken{}); err != nil {
		log.Fatal(err)
	}

	codec := token.NewCodec(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)

	var store session.Store
	switch cfg.SessionStore {
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		store = session.NewRedisStore(rdb, cfg.RefreshTTL)
	case "memory":
		store = session.NewMemoryStore()
	default:
		store = session.NewGormStore(db, cfg.RefreshTTL)
	}

	rotator := session.NewRotator(codec, store)
	resolver := session.NewResolver(codec)

	userRepo := repository.NewUserRepository(db)

	authService := auth.NewService(userRepo, rotator)
	authHandler := auth.NewHandler(authService, cfg.CookieSecure, cfg.CookieSameSite, cfg.CookiePath, cfg.AccessTTL, cfg.RefreshTTL)

	gate := admin.NewGate(resolver, userRepo)
	adminHandler := admin.NewHandler(userRepo)

	r := gin.Default()
	r.Use(middleware.CORS(), middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterPublicRoutes(v1)

		// protected
		protected := v1.Group("/")
		protected.Use(middleware.RequireAuth(resolver))
		{
			authHandler.RegisterProtectedRoutes(protected)
		}

		// admin
		adminGroup := v1.Group("/admin")
		adminGroup.Use(admin.RequireAdmin(gate))
		{
			adminHandler.RegisterRoutes(adminGroup)
		}
	}

	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal(err)
	}
}
