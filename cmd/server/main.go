package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/projetocarbone/roma-backend/internal/config"
	"github.com/projetocarbone/roma-backend/internal/database"
	"github.com/projetocarbone/roma-backend/internal/handler"
	"github.com/projetocarbone/roma-backend/internal/middleware"
	"github.com/projetocarbone/roma-backend/internal/payment"
	"github.com/projetocarbone/roma-backend/internal/queue"
	"github.com/projetocarbone/roma-backend/internal/repository"
	"github.com/projetocarbone/roma-backend/internal/router"
	"github.com/projetocarbone/roma-backend/internal/service"
	"github.com/projetocarbone/roma-backend/internal/storage"
	"github.com/projetocarbone/roma-backend/internal/utils"

	"github.com/projetocarbone/roma-backend/internal/mail"
)

func main() {
	// Load .env if present; real deployments set env vars directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	cfg := config.Load()

	var (
		users      repository.UserStore
		tokens     repository.TokenStore
		activities repository.ActivityStore
	)
	if cfg.Store == "memory" {
		log.Println("using in-memory store")
		mem := repository.NewMemoryUserStore()
		seedAdmin(mem, cfg.BcryptCost)
		users = mem
		tokens = repository.NewMemoryTokenStore()
		activities = repository.NewMemoryActivityStore()
	} else {
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		users = repository.NewUserRepo(db)
		tokens = repository.NewTokenRepo(db)
		activities = repository.NewActivityRepo(db)
	}
	coupons := repository.NewCouponRepo()

	rdb := config.NewRedisClient()
	rlCfg := config.LoadRateLimitConfig()

	recorder := service.NewActivityRecorder(activities)

	mailer := &mail.Mailer{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		AppURL:   cfg.AppURL,
	}
	if !mailer.Enabled() {
		log.Println("smtp not configured, emails disabled")
	}

	avatars, err := storage.NewAvatarStore(cfg)
	if err != nil {
		log.Printf("minio unavailable, avatar upload disabled: %v", err)
		avatars = nil
	}

	var provider payment.Provider
	if cfg.MPAccessToken != "" {
		provider = payment.NewMercadoPago(cfg.MPBaseURL, cfg.MPAccessToken)
	} else {
		log.Println("mercado pago token not set, payments disabled")
	}

	go func() {
		if err := queue.StartActivityConsumer(); err != nil {
			log.Printf("activity consumer stopped: %v", err)
		}
	}()

	authH := handler.NewAuthHandler(cfg, users, tokens, recorder, mailer)
	couponH := handler.NewCouponHandler(coupons)
	paymentH := handler.NewPaymentHandler(provider, mailer, rdb)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(middleware.Metrics())

	router.RegisterInfra(e)
	router.RegisterAuth(e, authH, avatars, rlCfg, rdb)
	router.RegisterCoupons(e, couponH, cfg.JWTSecret)
	router.RegisterPayments(e, paymentH, cfg.JWTSecret)

	log.Printf("listening on :%s (env=%s store=%s)", cfg.Port, cfg.Env, cfg.Store)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}

// seedAdmin gives the in-memory store one known account so the frontend
// can log in without a signup step during local development.
func seedAdmin(users *repository.MemoryUserStore, cost int) {
	hash, err := utils.HashPassword("Admin123!@#", cost)
	if err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	if err := users.Seed("Administrador", "admin@roma.com", hash); err != nil {
		log.Fatalf("seed admin: %v", err)
	}
}
