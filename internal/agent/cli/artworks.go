package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-artfolio/internal/agent/api"
	"github.com/IvanChernomyrdin/go-artfolio/internal/agent/memory"
	serr "github.com/IvanChernomyrdin/go-artfolio/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-artfolio/internal/shared/models"
)

// cache возвращает локальный кэш работ, создавая пустой при необходимости.
func (app *App) cache() *memory.ArtworksStore {
	if app.Artworks == nil {
		app.Artworks = memory.NewArtworks()
	}
	return app.Artworks
}

// saveCache пишет кэш на диск. Без пути кэш живёт только в памяти.
func (app *App) saveCache() error {
	if app.ArtworksPath == "" {
		return nil
	}
	return SaveArtworksToFile(app.ArtworksPath, app.cache())
}

// NewListCmd - список своих работ, новые первыми.
func NewListCmd(app *App) *cobra.Command {
	var (
		category int64
		local    bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Список своих работ",
		Long: `Список своих работ, новые первыми.

Примеры:
  artfolio list
  artfolio list --category 2
  artfolio list --local
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var categoryID *int64
			if cmd.Flags().Changed("category") {
				if category <= 0 {
					return fmt.Errorf("invalid category %d", category)
				}
				categoryID = &category
			}

			if local {
				printArtworks(cmd.OutOrStdout(), app.imagesBase(), app.cache().List(categoryID))
				return nil
			}

			token, err := app.token()
			if err != nil {
				return err
			}
			list, err := NewAPIClient(app.ServerURL).ListArtworks(token, categoryID)
			if err != nil {
				return app.checkAuth(err)
			}
			printArtworks(cmd.OutOrStdout(), app.imagesBase(), list)
			return nil
		},
	}

	cmd.Flags().Int64Var(&category, "category", 0, "filter by category id")
	cmd.Flags().BoolVar(&local, "local", false, "read from local cache (see sync)")
	return cmd
}

// NewGetCmd - одна работа по ID.
func NewGetCmd(app *App) *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Показать работу по ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if local {
				a, err := app.cache().Get(id)
				if err != nil {
					return fmt.Errorf("artwork %d not in local cache: %w", id, err)
				}
				printArtwork(cmd.OutOrStdout(), app.imagesBase(), a)
				return nil
			}

			token, err := app.token()
			if err != nil {
				return err
			}
			a, err := NewAPIClient(app.ServerURL).GetArtwork(token, id)
			if err != nil {
				return app.checkAuth(err)
			}
			printArtwork(cmd.OutOrStdout(), app.imagesBase(), a)
			return nil
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "read from local cache (see sync)")
	return cmd
}

// NewCreateCmd - новая работа, картинка опциональна.
func NewCreateCmd(app *App) *cobra.Command {
	var (
		title, description, image string
		category                  int64
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Создать работу",
		Long: `Создать работу.

Пример:
  artfolio create --title "Sunset" --description "oil on canvas" --category 1 --image ./sunset.jpg
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := app.token()
			if err != nil {
				return err
			}

			form := api.ArtworkForm{Title: &title, ImagePath: image}
			if cmd.Flags().Changed("description") {
				form.Description = &description
			}
			if cmd.Flags().Changed("category") {
				form.CategoryID = &category
			}

			a, err := NewAPIClient(app.ServerURL).CreateArtwork(token, form)
			if err != nil {
				return app.checkAuth(err)
			}

			app.cache().Put(a)
			if err := app.saveCache(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "artwork created: id=%d\n", a.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "artwork title")
	cmd.Flags().StringVar(&description, "description", "", "artwork description")
	cmd.Flags().Int64Var(&category, "category", 0, "category id (see categories)")
	cmd.Flags().StringVar(&image, "image", "", "path to image file (jpeg, png, gif, webp)")
	cmd.MarkFlagRequired("title")
	return cmd
}

// NewUpdateCmd - частичное изменение работы.
//
// Передаются только явно указанные флаги. --clear-description стирает описание.
func NewUpdateCmd(app *App) *cobra.Command {
	var (
		title, description, image string
		category                  int64
		clearDescription          bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Изменить работу",
		Long: `Изменить работу. Передаются только указанные флаги.

Примеры:
  artfolio update 7 --title "Sunset II"
  artfolio update 7 --image ./sunset-v2.png
  artfolio update 7 --clear-description
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			token, err := app.token()
			if err != nil {
				return err
			}

			form := api.ArtworkForm{ImagePath: image}
			if cmd.Flags().Changed("title") {
				form.Title = &title
			}
			if cmd.Flags().Changed("description") {
				form.Description = &description
			}
			if clearDescription {
				empty := ""
				form.Description = &empty
			}
			if cmd.Flags().Changed("category") {
				form.CategoryID = &category
			}
			if form.Title == nil && form.Description == nil && form.CategoryID == nil && form.ImagePath == "" {
				return errors.New("nothing to update: pass --title, --description, --category or --image")
			}

			c := NewAPIClient(app.ServerURL)
			resp, err := c.UpdateArtwork(token, id, form)
			if err != nil {
				return app.checkAuth(err)
			}

			// закэшированную работу перечитываем, чтобы кэш не отставал
			if _, err := app.cache().Get(id); err == nil {
				if a, err := c.GetArtwork(token, id); err == nil {
					app.cache().Put(a)
					if err := app.saveCache(); err != nil {
						return err
					}
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: id=%d\n", messageOr(resp, "artwork updated"), id)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().BoolVar(&clearDescription, "clear-description", false, "remove description")
	cmd.Flags().Int64Var(&category, "category", 0, "new category id")
	cmd.Flags().StringVar(&image, "image", "", "path to replacement image")
	cmd.MarkFlagsMutuallyExclusive("description", "clear-description")
	return cmd
}

// NewDeleteCmd - удаление работы на сервере и в локальном кэше.
func NewDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Удалить работу",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			token, err := app.token()
			if err != nil {
				return err
			}

			resp, err := NewAPIClient(app.ServerURL).DeleteArtwork(token, id)
			if err != nil {
				err = app.checkAuth(err)
				// на сервере уже нет, чистим и кэш
				if errors.Is(err, serr.ErrNotFound) {
					if app.cache().Delete(id) == nil {
						_ = app.saveCache()
					}
				}
				return err
			}

			if err := app.cache().Delete(id); err == nil {
				if err := app.saveCache(); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: id=%d\n", messageOr(resp, "artwork deleted"), id)
			return nil
		},
	}
}

// NewCategoriesCmd - справочник категорий.
func NewCategoriesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Список категорий",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := app.token()
			if err != nil {
				return err
			}
			list, err := NewAPIClient(app.ServerURL).ListCategories(token)
			if err != nil {
				return app.checkAuth(err)
			}
			for _, c := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", c.ID, c.Name)
			}
			return nil
		},
	}
}

// NewSyncCmd загружает все свои работы и сохраняет их в локальный кэш.
func NewSyncCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Сохранить свои работы локально",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := app.token()
			if err != nil {
				return err
			}
			list, err := NewAPIClient(app.ServerURL).ListArtworks(token, nil)
			if err != nil {
				return app.checkAuth(err)
			}

			app.cache().ReplaceAll(list)
			if err := app.saveCache(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "synced %d artworks\n", len(list))
			return nil
		},
	}
}

// NewImageURLCmd печатает полный URL картинки по значению поля image.
func NewImageURLCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "image-url <image>",
		Short: "URL картинки по значению поля image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := api.ResolveImageSrc(app.imagesBase(), args[0])
			if src == "" {
				return errors.New("empty image value")
			}
			fmt.Fprintln(cmd.OutOrStdout(), src)
			return nil
		},
	}
}

func messageOr(resp models.MessageResponse, fallback string) string {
	if m := strings.TrimSpace(resp.Message); m != "" {
		return strings.ToLower(m)
	}
	return fallback
}
