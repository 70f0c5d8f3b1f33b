// Package config содержит инициализацию подключения к базе данных сервера
// и доступ к глобальному экземпляру *sql.DB.
//
// Пакет выполняет:
//   - открытие соединения с PostgreSQL (через драйвер pgx);
//   - настройку пула соединений (db.max_open_conns и т.д.);
//   - проверку доступности базы (Ping);
//   - запуск миграций (golang-migrate) при старте сервера, включая сид категорий.
//
// Примечание: пакет использует глобальную переменную DB. Инициализация должна
// выполняться один раз при запуске сервера.
package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/IvanChernomyrdin/go-artfolio/internal/shared/logger"

	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v4/stdlib"
)

// DB - глобальный экземпляр подключения к базе данных.
//
// Инициализируется функцией Init и используется другими пакетами через GetDB.
var DB *sql.DB

// Init открывает подключение к базе данных, настраивает пул, проверяет
// доступность и (если включено) применяет миграции.
//
// Если миграции уже применены, ошибка migrate.ErrNoChange не считается ошибкой.
func Init(cfg *Config, log *logger.HTTPLogger) error {
	customLog := log.Sugar()

	var err error
	DB, err = sql.Open("pgx", cfg.DB.PostgresDSN())
	if err != nil {
		customLog.Errorf("error to connect db: %v", err)
		return err
	}

	// пул соединений - единственное разделяемое состояние сервера
	DB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	DB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	if cfg.DB.ConnMaxLifetime > 0 {
		DB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	}
	if cfg.DB.ConnMaxIdleTime > 0 {
		DB.SetConnMaxIdleTime(cfg.DB.ConnMaxIdleTime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = DB.PingContext(ctx); err != nil {
		customLog.Errorf("error check db connection: %v", err)
		return err
	}

	if !cfg.Migrations.Enabled {
		customLog.Info("migrations disabled")
		return nil
	}
	return RunMigrations(DB, cfg.Migrations.Path, log)
}

// RunMigrations применяет миграции из sourceURL (например file://migrations/postgres).
func RunMigrations(db *sql.DB, sourceURL string, log *logger.HTTPLogger) error {
	customLog := log.Sugar()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		customLog.Errorf("error creating migration driver: %v", err)
		return err
	}

	// создаём миграции с выбранным драйвером
	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		customLog.Errorf("error creating migrations: %v", err)
		return err
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		customLog.Errorf("error applying migrations: %v", err)
		return fmt.Errorf("apply migrations: %w", err)
	}

	customLog.Info("migrations applied successfully")
	return nil
}

// GetDB возвращает текущий глобальный экземпляр *sql.DB.
//
// Возвращаемое значение может быть nil, если Init ещё не вызывался
// или завершился ошибкой.
func GetDB() *sql.DB {
	return DB
}
