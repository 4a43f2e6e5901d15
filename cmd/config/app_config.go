package config

import (
	"Fideliza-Backend/internal/api/handlers"
	"Fideliza-Backend/internal/api/routes"
	"Fideliza-Backend/internal/middleware"
	"Fideliza-Backend/internal/utils"
	"Fideliza-Backend/internal/utils/storage"
	"Fideliza-Backend/pkg/audit"
	"Fideliza-Backend/pkg/extraction"
	"Fideliza-Backend/pkg/identity"
	"Fideliza-Backend/pkg/jwt"
	"Fideliza-Backend/pkg/parser"
	"Fideliza-Backend/pkg/qrdecode"
	"Fideliza-Backend/pkg/receipt"
	"Fideliza-Backend/pkg/reward"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func NewApp(db *gorm.DB) (*fiber.App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
		BodyLimit:         12 * 1024 * 1024,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	err := os.MkdirAll("./logs", os.ModePerm)
	if err != nil {
		log.Fatalf("error creating logs directory: %v", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "America/Sao_Paulo",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	// utils
	s3 := storage.NewAwsS3()
	redisClient := redis.NewClient(&redis.Options{
		Addr:     utils.GetConfig("REDIS_ADDR"),
		Password: utils.GetConfig("REDIS_PASSWORD"),
	})

	// Repository
	receiptRepository := receipt.NewReceiptRepository(db)
	rewardRepository := reward.NewRewardRepository(db)
	auditRepository := audit.NewAuditRepository(db)
	identityRepository := identity.NewCachedIdentityRepository(
		identity.NewIdentityRepository(db), redisClient, 10*time.Minute)

	// Service
	jwtService := jwt.NewJWTService()

	extractionConfig := extraction.DefaultConfig()
	if languages := utils.GetConfig("OCR_LANGUAGES"); languages != "" {
		extractionConfig.Languages = strings.Split(languages, ",")
	}
	if seconds, err := strconv.Atoi(utils.GetConfig("OCR_TIMEOUT_SECONDS")); err == nil && seconds > 0 {
		extractionConfig.Timeout = time.Duration(seconds) * time.Second
	}
	ocrEngine := extraction.NewTesseractEngine()
	pdfExtractor := extraction.NewPDFExtractor()
	extractionService := extraction.NewExtractionService(extractionConfig, ocrEngine, pdfExtractor)

	payloadDecoder := qrdecode.NewPayloadDecoder(ocrEngine, pdfExtractor, extractionConfig.Languages)
	parserService := parser.NewParserService(parser.DefaultConfig(), parser.DefaultRules())
	identityService := identity.NewIdentityService(identityRepository, identity.DefaultConfig())
	rewardService := reward.NewRewardService(rewardRepository)
	auditService := audit.NewAuditService(auditRepository)

	receiptConfig := receipt.DefaultConfig()
	if rate, err := strconv.ParseFloat(utils.GetConfig("CASHBACK_RATE"), 64); err == nil && rate >= 0 {
		receiptConfig.CashbackRate = rate
	}
	receiptService := receipt.NewReceiptService(
		receiptRepository,
		extractionService,
		payloadDecoder,
		parserService,
		identityService,
		rewardService,
		auditService,
		s3,
		receiptConfig,
	)

	// Handler
	receiptHandler := handlers.NewReceiptHandler(receiptService, validator)
	rewardHandler := handlers.NewRewardHandler(rewardService)

	// routes
	routesConfig := routes.Config{
		App:            app,
		ReceiptHandler: receiptHandler,
		RewardHandler:  rewardHandler,
		Middleware:     middlewares,
		JWTService:     jwtService,
	}
	routesConfig.Setup()
	return app, nil
}
