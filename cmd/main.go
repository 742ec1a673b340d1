package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Kosench/go-link-shortener/internal/auth"
	"github.com/Kosench/go-link-shortener/internal/cache"
	"github.com/Kosench/go-link-shortener/internal/config"
	"github.com/Kosench/go-link-shortener/internal/database"
	"github.com/Kosench/go-link-shortener/internal/handler"
	"github.com/Kosench/go-link-shortener/internal/repository"
	"github.com/Kosench/go-link-shortener/internal/service"
	"github.com/Kosench/go-link-shortener/internal/shortcode"
	"github.com/Kosench/go-link-shortener/internal/sweeper"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	db, err := database.Connect(
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.DBName)
	if err != nil {
		log.Fatal("Failed to connect database: ", err)
	}
	defer db.Close()

	// Ждем готовности БД прежде чем накатывать схему и запускать sweeper
	if err := database.WaitForReady(db, 10, 2*time.Second); err != nil {
		log.Fatal("Database not ready: ", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}

	log.Println("Successfully connected to database")

	// Подключаемся к Redis; при недоступности работаем с локальным LRU-кэшем
	var linkCache cache.Cache
	redisClient, err := cache.NewRedisClient(cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		CacheTTL:     cfg.Redis.CacheTTL,
	})
	if err != nil {
		log.Printf("Failed to connect to Redis (falling back to in-memory cache): %v", err)
		redisClient = nil
		linkCache = cache.NewLRUCache(0, time.Duration(cfg.Redis.CacheTTL)*time.Second)
	} else {
		defer redisClient.Close()
		linkCache = redisClient
		log.Println("Successfully connected to Redis")
	}

	linkRepo := repository.NewCachedLinkRepository(repository.NewPostgresLinkRepository(db), linkCache)
	userRepo := repository.NewPostgresUserRepository(db)

	generator := shortcode.NewGenerator(cfg.App.CodeLength, nil)
	resolver := shortcode.NewResolver(generator, linkRepo, cfg.App.MaxGenerateAttempts)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	linkService := service.NewLinkService(linkRepo, resolver, cfg.GetBaseURL())
	userService := service.NewUserService(userRepo, tokens)

	linkHandler := handler.NewLinkHandler(linkService)
	userHandler := handler.NewUserHandler(userService)

	// Единственная фоновая задача процесса
	expirationSweeper := sweeper.New(linkRepo, cfg.Sweeper.Interval, cfg.Sweeper.RetryInterval)
	expirationSweeper.Start()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Middleware
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.GetAllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Rate limiting с Redis (если доступен)
	if redisClient != nil {
		router.Use(RedisRateLimitMiddleware(redisClient, 100, time.Minute))
	} else {
		router.Use(InMemoryRateLimitMiddleware(100, time.Minute))
	}

	// Опциональная аутентификация: аноним проходит дальше
	router.Use(handler.OptionalAuth(userService))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		response := gin.H{
			"status": "healthy",
			"services": gin.H{
				"database": "checking",
				"cache":    "checking",
			},
		}

		if err := database.HealthCheck(db); err != nil {
			response["services"].(gin.H)["database"] = "unhealthy"
			response["status"] = "degraded"
		} else {
			response["services"].(gin.H)["database"] = "healthy"
		}

		if redisClient != nil {
			if err := redisClient.HealthCheck(c.Request.Context()); err != nil {
				response["services"].(gin.H)["cache"] = "unhealthy"
				response["status"] = "degraded"
			} else {
				response["services"].(gin.H)["cache"] = "healthy"
			}
		} else {
			response["services"].(gin.H)["cache"] = "in-memory"
		}

		statusCode := http.StatusOK
		if response["status"] == "degraded" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, response)
	})

	// Service info
	router.GET("/info", func(c *gin.Context) {
		info := gin.H{
			"service":     "go-link-shortener",
			"environment": cfg.App.Environment,
			"base_url":    cfg.GetBaseURL(),
		}
		if version, err := database.GetVersion(db); err == nil {
			info["database_version"] = version
		}
		c.JSON(http.StatusOK, info)
	})

	// Link API
	router.GET("/links", linkHandler.ListLinks)
	router.POST("/links/shorten", linkHandler.CreateLink)
	router.GET("/links/search", linkHandler.SearchLink)
	router.GET("/links/:shortCode", linkHandler.RedirectLink)
	router.DELETE("/links/:shortCode", linkHandler.DeleteLink)
	router.PUT("/links/:shortCode", linkHandler.UpdateLink)
	router.GET("/links/:shortCode/stats", linkHandler.GetStats)

	// Auth API
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", userHandler.Register)
		authRoutes.POST("/login", userHandler.Login)
		authRoutes.POST("/logout", userHandler.Logout)
		authRoutes.GET("/me", userHandler.Me)
		authRoutes.GET("/users", userHandler.ListUsers)
	}

	// HTTP Server
	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// Запускаем сервер
	go func() {
		log.Printf("Server starting on %s", cfg.GetServerAddress())
		log.Printf("Link endpoints: /links, redirect: GET /links/{shortCode}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Останавливаем фоновый sweeper
	expirationSweeper.Stop()

	// Останавливаем HTTP сервер
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server gracefully stopped")
}

// RedisRateLimitMiddleware - rate limiter с использованием Redis
func RedisRateLimitMiddleware(limiter cache.RateLimiter, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := cache.CacheKeys.RateLimit(c.ClientIP())

		count, err := limiter.IncrementRateLimit(ctx, key, window)
		if err != nil {
			log.Printf("Rate limit error: %v", err)
			// При ошибке Redis пропускаем запрос
			c.Next()
			return
		}

		if count > int64(maxRequests) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "Too many requests. Please try again later.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// InMemoryRateLimitMiddleware - fallback rate limiter без Redis
func InMemoryRateLimitMiddleware(maxRequests int, window time.Duration) gin.HandlerFunc {
	var mu sync.Mutex
	requests := make(map[string][]time.Time)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		now := time.Now()

		mu.Lock()

		// Очищаем старые записи
		validTimes := requests[clientIP][:0]
		for _, t := range requests[clientIP] {
			if now.Sub(t) < window {
				validTimes = append(validTimes, t)
			}
		}
		requests[clientIP] = validTimes

		if len(requests[clientIP]) >= maxRequests {
			mu.Unlock()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "Too many requests. Please try again later.",
			})
			c.Abort()
			return
		}

		requests[clientIP] = append(requests[clientIP], now)
		mu.Unlock()

		c.Next()
	}
}
