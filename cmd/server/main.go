// @title           Artfolio API
// @version         1.0
// @description     Art portfolio backend.
// @description     Users register, sign in and manage their own artworks with images and categories.

// @contact.name   Ivan Chernomyrdin
// @contact.url    https://github.com/IvanChernomyrdin

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
//
// Package main содержит точку входа серверного приложения artfolio.
//
// Пакет отвечает за инициализацию и жизненный цикл HTTP(S)-сервера, а именно:
//   - загрузку переменных окружения из файла .env (если он присутствует);
//   - загрузку конфигурации сервера (путь из ARTFOLIO_CONFIG или ./configs/server.yaml);
//   - инициализацию подключения к базе данных и миграций;
//   - выбор хранилища картинок (локальный каталог или S3);
//   - создание репозиториев, сервисов, middleware и HTTP-обработчиков;
//   - запуск сервера и graceful shutdown по сигналу.
//
// Пакет не содержит бизнес-логики и не предназначен для unit-тестирования.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/IvanChernomyrdin/go-artfolio/internal/server/api"
	"github.com/IvanChernomyrdin/go-artfolio/internal/server/config"
	"github.com/IvanChernomyrdin/go-artfolio/internal/server/crypto"
	"github.com/IvanChernomyrdin/go-artfolio/internal/server/images"
	"github.com/IvanChernomyrdin/go-artfolio/internal/server/middleware"
	h "github.com/IvanChernomyrdin/go-artfolio/internal/server/net/http"
	"github.com/IvanChernomyrdin/go-artfolio/internal/server/repository"
	"github.com/IvanChernomyrdin/go-artfolio/internal/server/service"
	"github.com/IvanChernomyrdin/go-artfolio/internal/shared/logger"

	_ "github.com/IvanChernomyrdin/go-artfolio/swagger/docs"
)

const defaultConfigPath = "./configs/server.yaml"

func main() {
	bootLog := logger.NewHTTPLogger().Logger.Sugar()

	if err := godotenv.Load(); err != nil {
		bootLog.Warnf("no .env file loaded, error: %v", err)
	}

	path := os.Getenv("ARTFOLIO_CONFIG")
	if path == "" {
		path = defaultConfigPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		bootLog.Fatal(err)
	}

	httpLogger := logger.New(logger.Options{
		Dir:         cfg.Log.Dir,
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Development: cfg.Log.Development,
	})
	defer httpLogger.Sync()
	sugar := httpLogger.Sugar()

	// подключаем базу данных
	if err := config.Init(cfg, httpLogger); err != nil {
		sugar.Fatal(err)
	}
	db := config.GetDB()
	defer func() {
		if db != nil {
			db.Close()
		}
	}()

	// без ключа подписи сервер не стартует
	tokens, err := crypto.NewTokenService(crypto.JWTConfig{
		Issuer:     cfg.Auth.Issuer,
		Audience:   cfg.Auth.Audience,
		SigningKey: cfg.Auth.JWT.SigningKey,
		AccessTTL:  cfg.Auth.AccessTTL,
	})
	if err != nil {
		sugar.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	store, err := newImageStore(ctx, cfg.Images)
	if err != nil {
		sugar.Fatal(err)
	}
	intake := images.NewIntake(store, images.Options{
		MaxBytes:     cfg.Images.MaxBytes,
		AllowedTypes: cfg.Images.AllowedTypes,
	})

	// создаём репы
	repos := service.Repositories{
		Users:      repository.NewUsersRepository(db),
		Artworks:   repository.NewArtworksRepository(db),
		Categories: repository.NewCategoriesRepository(db),
		Health:     repository.NewHealthRepository(db),
	}
	// создаём сервисы
	svc := service.NewServices(repos, cfg, tokens, intake)
	svc.Artworks.SetLogger(httpLogger)

	// создаём хандлер
	handler := api.NewHandler(svc, httpLogger, middleware.NewJWTVerifier(tokens))
	handler.Images = intake
	handler.MaxBodyBytes = cfg.Server.MaxBodyBytes
	handler.MaxImageBytes = intake.MaxBytes()

	// создаём роутер
	router := h.NewRouter(handler, h.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		ImagesPrefix:   cfg.Images.URLPrefix,
	})

	addr := cfg.Server.Addr()
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
	}

	g, ctx := errgroup.WithContext(ctx)

	// запускаем сервер
	g.Go(func() error {
		sugar.Infof("server started on %s (tls=%t, images=%s)", addr, cfg.TLS.Enabled, cfg.Images.Driver)

		var err error
		if cfg.TLS.Enabled {
			err = server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// graceful shutdown с таймаутом из конфига
	g.Go(func() error {
		<-ctx.Done()

		sugar.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	// ожидание и единая обработка ошибок
	if err := g.Wait(); err != nil {
		sugar.Fatalf("server stopped with error: %v", err)
	}
	sugar.Info("server gracefully stopped")
}

// newImageStore выбирает хранилище картинок по images.driver.
func newImageStore(ctx context.Context, cfg config.ImagesConfig) (images.Store, error) {
	switch cfg.Driver {
	case "", "local":
		return images.NewDirStore(cfg.Dir)
	case "s3":
		opts := images.S3Options{
			Bucket:       cfg.S3.Bucket,
			Region:       cfg.S3.Region,
			Endpoint:     cfg.S3.Endpoint,
			Prefix:       cfg.S3.Prefix,
			UsePathStyle: cfg.S3.UsePathStyle,
			AccessKey:    cfg.S3.AccessKey,
			SecretKey:    cfg.S3.SecretKey,
		}
		client, err := images.NewS3Client(ctx, opts)
		if err != nil {
			return nil, err
		}
		return images.NewS3Store(client, opts)
	default:
		return nil, fmt.Errorf("unknown images driver %q", cfg.Driver)
	}
}
