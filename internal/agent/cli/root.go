// Package cli реализует командный интерфейс (CLI) клиентского приложения artfolio.
//
// Пакет отвечает за:
//   - определение root-команды и набора подкоманд;
//   - разбор аргументов и флагов командной строки;
//   - загрузку локальной сессии (токена) и кэша работ;
//   - выполнение команд и вывод результата пользователю.
//
// Точка входа пакета - функция Execute.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-artfolio/internal/agent/api"
	"github.com/IvanChernomyrdin/go-artfolio/internal/agent/config"
	"github.com/IvanChernomyrdin/go-artfolio/internal/agent/memory"
)

// App содержит состояние CLI-приложения, разделяемое между командами.
//
// Экземпляр App создаётся при построении root-команды и передаётся в подкоманды.
// Сессия (Creds) передаётся в каждый запрос явно, глобального состояния нет.
type App struct {
	// ServerURL - базовый URL сервера (например, "http://localhost:8080").
	ServerURL string
	// ImagesURL - базовый URL картинок. Пустой - <ServerURL>/images.
	ImagesURL string

	// CredsPath - путь к файлу сессии.
	CredsPath string
	// Creds - загруженная сессия. Может быть nil до PersistentPreRunE.
	Creds *config.Credentials

	// ArtworksPath - путь к файлу локального кэша работ.
	ArtworksPath string
	// Artworks - локальный кэш работ (заполняется sync).
	Artworks *memory.ArtworksStore
}

// NewRootCmd создаёт root-команду CLI и регистрирует подкоманды.
//
// buildVersion и buildDate используются для вывода информации о сборке (команда version).
// В PersistentPreRunE загружаются сессия и локальный кэш работ.
func NewRootCmd(buildVersion, buildDate string) *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:   "artfolio",
		Short: "artfolio CLI - портфолио художника",
		Long: `artfolio CLI.

Команды:
  register    Регистрация нового пользователя
  login       Вход (сохраняет токен локально)
  logout      Забыть токен
  list        Список своих работ
  get         Одна работа по ID
  create      Создать работу (с картинкой или без)
  update      Изменить работу
  delete      Удалить работу
  categories  Справочник категорий
  sync        Сохранить работы локально
  image-url   URL картинки по значению поля image
  version     Версия и дата сборки

Адрес сервера: флаг --server или переменная ARTFOLIO_API_BASE_URL.
Адрес картинок: флаг --images-url или ARTFOLIO_IMAGES_BASE_URL.

Примеры:
  artfolio register --email test@example.com
  artfolio login --email test@example.com
  artfolio create --title "Sunset" --category 1 --image ./sunset.jpg
  artfolio list --category 1
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.load()
		},
	}

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().StringVar(&app.ServerURL, "server", config.BaseURLFromEnv(api.DefaultBaseURL), "server base URL")
	cmd.PersistentFlags().StringVar(&app.ImagesURL, "images-url", config.ImagesURLFromEnv(), "images base URL (default <server>/images)")

	cmd.AddCommand(NewRegisterCmd(app))
	cmd.AddCommand(NewLoginCmd(app))
	cmd.AddCommand(NewLogoutCmd(app))
	cmd.AddCommand(NewListCmd(app))
	cmd.AddCommand(NewGetCmd(app))
	cmd.AddCommand(NewCreateCmd(app))
	cmd.AddCommand(NewUpdateCmd(app))
	cmd.AddCommand(NewDeleteCmd(app))
	cmd.AddCommand(NewCategoriesCmd(app))
	cmd.AddCommand(NewSyncCmd(app))
	cmd.AddCommand(NewImageURLCmd(app))
	cmd.AddCommand(NewVersionCmd(buildVersion, buildDate))

	return cmd
}

// imagesBase - базовый URL для ResolveImageSrc.
func (app *App) imagesBase() string {
	if strings.TrimSpace(app.ImagesURL) != "" {
		return app.ImagesURL
	}
	return api.ImagesBaseURL(app.ServerURL, api.DefaultImagesPath)
}

// load определяет пути по умолчанию и читает сессию и кэш.
func (app *App) load() error {
	if app.CredsPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		app.CredsPath = p
	}
	creds, err := config.Load(app.CredsPath)
	if err != nil {
		return fmt.Errorf("load credentials %s: %w", app.CredsPath, err)
	}
	app.Creds = creds

	if app.ArtworksPath == "" {
		p, err := memory.DefaultArtworksPath()
		if err != nil {
			return err
		}
		app.ArtworksPath = p
	}
	app.Artworks = memory.NewArtworks()
	if err := memory.LoadFromFile(app.ArtworksPath, app.Artworks); err != nil {
		return fmt.Errorf("load artworks cache %s: %w", app.ArtworksPath, err)
	}
	return nil
}

// Execute запускает обработку CLI-команд.
//
// Переменные из .env (если файл есть) подхватываются до разбора флагов.
// При ошибке выполнения команды сообщение выводится в stderr, после чего процесс
// завершается с кодом 1 (os.Exit(1)).
func Execute(buildVersion, buildDate string) {
	_ = godotenv.Load()

	if err := NewRootCmd(buildVersion, buildDate).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
