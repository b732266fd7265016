package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MHR-RONY/Gramer--Bazar/config"
	"github.com/MHR-RONY/Gramer--Bazar/internal/api/admin"
	"github.com/MHR-RONY/Gramer--Bazar/internal/api/order"
	"github.com/MHR-RONY/Gramer--Bazar/internal/api/product"
	"github.com/MHR-RONY/Gramer--Bazar/internal/api/user"
	apperrors "github.com/MHR-RONY/Gramer--Bazar/internal/errors"
	"github.com/MHR-RONY/Gramer--Bazar/internal/limiter"
	"github.com/MHR-RONY/Gramer--Bazar/internal/middleware"
	"github.com/MHR-RONY/Gramer--Bazar/internal/model"
	"github.com/MHR-RONY/Gramer--Bazar/internal/repository/mysql"
	"github.com/MHR-RONY/Gramer--Bazar/internal/service"
	"github.com/MHR-RONY/Gramer--Bazar/internal/storage"
	"github.com/MHR-RONY/Gramer--Bazar/internal/util"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// 初始化配置
	cfg := config.Load()

	// 初始化日志
	util.InitLogger(cfg.LogLevel)
	defer util.Logger.Sync()

	util.Logger.Info("应用程序启动", zap.String("env", cfg.Env))

	// 连接数据库
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		util.Logger.Fatal("连接数据库失败", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		util.Logger.Fatal("数据库连接测试失败", zap.Error(err))
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	util.Logger.Info("数据库连接成功")

	// 注册自定义验证器
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("slug", util.ValidateSlug)
	}

	// 初始化文件存储
	fileStorage, err := storage.New(cfg)
	if err != nil {
		util.Logger.Fatal("初始化文件存储失败", zap.Error(err))
	}

	// 初始化存储库、服务和处理器
	tokens := util.NewTokenManager(cfg.JWTSecret, cfg.JWTExpire)
	emailService := service.NewEmailService(cfg)

	userRepo := mysql.NewUserRepository(db)
	productRepo := mysql.NewProductRepository(db)
	categoryRepo := mysql.NewCategoryRepository(db)
	orderRepo := mysql.NewOrderRepository(db)

	userService := service.NewUserService(userRepo, emailService, tokens, fileStorage)
	productService := service.NewProductService(productRepo, categoryRepo, fileStorage)
	categoryService := service.NewCategoryService(categoryRepo)
	orderService := service.NewOrderService(orderRepo, productRepo, userRepo, emailService)
	adminService := service.NewAdminService(userRepo, productRepo, orderRepo)

	analytics := apperrors.NewErrorAnalytics()

	authHandler := user.NewAuthHandler(userService)
	profileHandler := user.NewProfileHandler(userService)
	addressHandler := user.NewAddressHandler(userService)
	productHandler := product.NewProductHandler(productService)
	categoryHandler := product.NewCategoryHandler(categoryService)
	orderHandler := order.NewOrderHandler(orderService)
	adminHandler := admin.NewAdminHandler(adminService, analytics)

	// 创建路由
	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	r.Use(gin.Logger())
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.ErrorMonitorMiddleware(analytics))

	// CORS配置
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Redis 限流，未配置 Redis 时跳过
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		manager := limiter.NewManager(rdb, &limiter.FixedWindowStrategy{})
		r.Use(middleware.RateLimitMiddleware(manager, cfg.RateLimitMax, cfg.RateLimitWindow))
		util.Logger.Info("限流已启用",
			zap.Int("max", cfg.RateLimitMax),
			zap.Duration("window", cfg.RateLimitWindow))
	}

	// 本地存储时直接提供静态文件
	if cfg.StorageDriver == "local" {
		r.Static("/uploads", cfg.LocalStoragePath)
	}

	authRequired := middleware.AuthMiddleware(userRepo, tokens)
	adminOnly := middleware.Authorize(model.RoleAdmin)
	vendorOrAdmin := middleware.Authorize(model.RoleAdmin, model.RoleVendor)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			if err := db.Ping(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/verify-email/:userId", authHandler.VerifyEmail)
			auth.POST("/resend-otp/:userId", authHandler.ResendOTP)
			auth.POST("/forgot-password", authHandler.ForgotPassword)
			auth.POST("/reset-password/:token", authHandler.ResetPassword)

			auth.GET("/me", authRequired, profileHandler.Me)
			auth.PUT("/update-profile", authRequired, profileHandler.UpdateProfile)
			auth.PUT("/avatar", authRequired, profileHandler.UploadAvatar)
		}

		addresses := v1.Group("/addresses", authRequired)
		{
			addresses.GET("", addressHandler.ListAddresses)
			addresses.POST("", addressHandler.CreateAddress)
			addresses.PUT("/:id", addressHandler.UpdateAddress)
			addresses.DELETE("/:id", addressHandler.DeleteAddress)
			addresses.PUT("/:id/default", addressHandler.SetDefaultAddress)
		}

		products := v1.Group("/products")
		{
			products.GET("", productHandler.ListProducts)
			products.GET("/:id", productHandler.GetProduct)
			products.POST("", authRequired, vendorOrAdmin, productHandler.CreateProduct)
			products.PUT("/:id", authRequired, vendorOrAdmin, productHandler.UpdateProduct)
			products.DELETE("/:id", authRequired, adminOnly, productHandler.DeleteProduct)
			products.POST("/:id/images", authRequired, vendorOrAdmin, productHandler.UploadImage)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", categoryHandler.ListCategories)
			categories.GET("/:id", categoryHandler.GetCategory)
			categories.POST("", authRequired, adminOnly, categoryHandler.CreateCategory)
			categories.PUT("/:id", authRequired, adminOnly, categoryHandler.UpdateCategory)
			categories.DELETE("/:id", authRequired, adminOnly, categoryHandler.DeleteCategory)
		}

		orders := v1.Group("/orders", authRequired)
		{
			orders.POST("", orderHandler.PlaceOrder)
			orders.GET("/my", orderHandler.ListMyOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.GET("", adminOnly, orderHandler.ListOrders)
			orders.PUT("/:id/status", adminOnly, orderHandler.UpdateOrderStatus)
		}

		adminGroup := v1.Group("/admin", authRequired, adminOnly)
		{
			adminGroup.GET("/users", adminHandler.ListUsers)
			adminGroup.PUT("/users/:id/role", adminHandler.UpdateUserRole)
			adminGroup.GET("/stats", adminHandler.GetStats)
			adminGroup.GET("/errors", adminHandler.GetErrorStats)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		apperrors.HandleError(c, apperrors.New(apperrors.ErrResourceNotFound,
			fmt.Sprintf("Route %s not found", c.Request.URL.Path)))
	})

	// 启动服务器
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		util.Logger.Info("服务器开始监听", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Logger.Fatal("服务器启动失败", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	util.Logger.Info("收到关闭信号，服务器准备退出")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		util.Logger.Fatal("服务器强制关闭", zap.Error(err))
	}

	util.Logger.Info("服务器已退出")
}
