package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRegisterCmd создаёт CLI-команду для регистрации нового пользователя.
//
// Команда регистрирует пользователя на сервере по email и паролю. Пароль можно
// передать флагом --password, через STDIN (--password-stdin) или ввести
// интерактивно. Токен при регистрации не выдаётся, нужен отдельный login.
//
// Пример использования:
//
//	artfolio register --email test@example.com --password StrongPass123
func NewRegisterCmd(app *App) *cobra.Command {
	var (
		email, password string
		passwordStdin   bool
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Регистрация нового пользователя",
		Long: `Регистрация нового пользователя на сервере.

Пример:
  artfolio register --email test@example.com --password StrongPass123
  echo StrongPass123 | artfolio register --email test@example.com --password-stdin
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passwordFrom(cmd, password, passwordStdin)
			if err != nil {
				return err
			}

			c := NewAPIClient(app.ServerURL)
			// выполняет добавление нового пользователя в бд
			if _, err := c.Register(email, pw); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "registration successful, now run: artfolio login")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email for registration")
	cmd.Flags().StringVar(&password, "password", "", "password for registration (prompted if empty)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read password from stdin")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagsMutuallyExclusive("password", "password-stdin")

	return cmd
}
