package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/IvanChernomyrdin/go-artfolio/internal/agent/config"
)

// NewLoginCmd создаёт CLI-команду для входа пользователя в систему.
//
// Команда выполняет аутентификацию на сервере, получает токен доступа
// и сохраняет его вместе с email в локальный файл сессии.
//
// Пример использования:
//
//	artfolio login --email test@example.com --password StrongPass123
func NewLoginCmd(app *App) *cobra.Command {
	var (
		email, password string
		passwordStdin   bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Логин пользователя (получить токен)",
		Long: `Логин пользователя.

Пример:
  artfolio login --email test@example.com --password StrongPass123
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passwordFrom(cmd, password, passwordStdin)
			if err != nil {
				return err
			}

			// создаём API-клиент для общения с сервером
			c := NewAPIClient(app.ServerURL)
			token, err := c.SignIn(email, pw)
			if err != nil {
				return err
			}

			if app.Creds == nil {
				app.Creds = &config.Credentials{}
			}
			app.Creds.Token = token
			app.Creds.Email = email

			// сохраняем токен в локальный файл сессии
			if err := config.Save(app.CredsPath, app.Creds); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "login ok (token saved)")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email for login")
	cmd.Flags().StringVar(&password, "password", "", "password for login (prompted if empty)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read password from stdin")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagsMutuallyExclusive("password", "password-stdin")

	return cmd
}

// NewLogoutCmd создаёт команду, которая забывает сохранённый токен.
//
// Токены на сервере не отзываются, поэтому logout только локальный.
func NewLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Забыть сохранённый токен",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Creds == nil {
				app.Creds = &config.Credentials{}
			}
			app.Creds.Clear()
			if err := config.Save(app.CredsPath, app.Creds); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}
