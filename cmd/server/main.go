package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"survey-server/internal/catalog"
	"survey-server/internal/config"
	"survey-server/internal/handler"
	appLogger "survey-server/internal/logger"
	appMiddleware "survey-server/internal/middleware"
	"survey-server/internal/repository"
	"survey-server/internal/service"
	"survey-server/internal/session"
)

func main() {
	_ = godotenv.Load()
	log.Println("Запуск Voice Survey Service...")

	// Загружаем конфиг ДО инициализации логгера
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger, err := appLogger.New(appLogger.Config{
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
	})
	if err != nil {
		log.Fatalf("Не удалось инициализировать логгер: %v", err)
	}
	defer logger.Sync()
	logger.Info("Logger initialized", zap.String("logLevel", cfg.LogLevel))

	// Каталог вопросов: загружается один раз, далее только чтение
	cat, err := catalog.LoadCSV(cfg.QuestionsFile)
	if err != nil {
		logger.Fatal("Не удалось загрузить каталог вопросов", zap.Error(err))
	}
	logger.Info("Каталог вопросов загружен",
		zap.String("file", cfg.QuestionsFile),
		zap.Int("total", cat.Len()))

	// Хранилище сессий с TTL-реапером
	store := session.NewStore(cfg.SessionTTL, cfg.SessionReapInterval, logger)
	defer store.Close()

	// AI оракул (с политикой повторов на границе адаптера)
	oracle, err := service.NewOracle(cfg, logger)
	if err != nil {
		logger.Fatal("Не удалось создать AI клиента", zap.Error(err))
	}

	// Речевые сервисы
	transcriber, synthesizer := service.NewSpeechClient(cfg, logger)

	// Persistence sink для ответов
	responses, dbPool, err := setupResponseRepository(cfg, logger)
	if err != nil {
		logger.Fatal("Не удалось создать репозиторий ответов", zap.Error(err))
	}
	if dbPool != nil {
		defer dbPool.Close()
	}

	// Сборка ядра
	classifier := service.NewIntentClassifier(oracle, logger)
	interpreter := service.NewAnswerInterpreter(oracle, logger)
	explainer := service.NewQuestionExplainer(oracle, logger)
	engine := service.NewDialogueEngine(cat, classifier, interpreter, explainer, logger)
	composer := service.NewResponseComposer(synthesizer, logger)
	surveyService := service.NewSurveyService(cat, store, engine, transcriber, composer, responses, logger)
	surveyHandler := handler.NewSurveyHandler(surveyService, cat, logger)

	// Настройка Echo
	e := echo.New()
	e.HideBanner = true
	e.Use(appMiddleware.EchoZapLogger(logger))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
	}))

	surveyHandler.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	log.Printf("Survey сервер слушает на порту %s", cfg.Port)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("Ошибка запуска HTTP сервера: ", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Получен сигнал завершения, начинаем graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal("Ошибка при graceful shutdown Echo: ", err)
	}

	log.Println("Voice Survey Service успешно остановлен")
}

// setupResponseRepository создает persistence sink в зависимости от конфигурации.
// Пул возвращается отдельно для закрытия при остановке (nil для csv).
func setupResponseRepository(cfg *config.Config, logger *zap.Logger) (repository.ResponseRepository, *pgxpool.Pool, error) {
	switch cfg.ResponsesBackend {
	case "csv", "":
		return repository.NewCSVResponseRepository(cfg.ResponsesFile, logger), nil, nil
	case "postgres":
		dbPool, err := setupDatabase(cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Успешное подключение к PostgreSQL")
		return repository.NewPostgresResponseRepository(dbPool, logger), dbPool, nil
	default:
		return nil, nil, fmt.Errorf("неизвестный бэкенд ответов: '%s'", cfg.ResponsesBackend)
	}
}

// setupDatabase инициализирует и возвращает пул соединений с БД.
func setupDatabase(cfg *config.Config) (*pgxpool.Pool, error) {
	dsn := cfg.GetDSN()
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга DSN: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.DBMaxConns)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	dbPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать пул соединений: %w", err)
	}
	if err = dbPool.Ping(ctx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("не удалось подключиться к БД (ping failed): %w", err)
	}
	return dbPool, nil
}
