package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/IvanChernomyrdin/go-artfolio/internal/agent/config"
	serr "github.com/IvanChernomyrdin/go-artfolio/internal/shared/errors"
)

// errNotLoggedIn - команды, которым нужен токен.
var errNotLoggedIn = errors.New("not logged in, run: artfolio login")

// token возвращает сохранённый токен или errNotLoggedIn.
func (app *App) token() (string, error) {
	if !app.Creds.LoggedIn() {
		return "", errNotLoggedIn
	}
	return app.Creds.Token, nil
}

// checkAuth: 401 на обычном запросе значит, что токен протух или подделан.
// Сохранённый токен стирается, пользователь должен войти заново.
func (app *App) checkAuth(err error) error {
	if err == nil || !errors.Is(err, serr.ErrUnauthorized) {
		return err
	}
	if app.Creds != nil {
		app.Creds.Clear()
		if app.CredsPath != "" {
			if saveErr := config.Save(app.CredsPath, app.Creds); saveErr != nil {
				return fmt.Errorf("%w (also failed to clear token: %v)", err, saveErr)
			}
		}
	}
	return fmt.Errorf("%w: session expired, run: artfolio login", err)
}

// parseID разбирает положительный ID из аргумента.
func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// readPassword читает пароль.
//
// Режимы:
//   - fromStdin=true: читает пароль из STDIN полностью (удобно для скриптов/CI);
//   - fromStdin=false: читает пароль интерактивно из терминала со скрытым вводом.
//
// Пустой пароль считается ошибкой.
func readPassword(cmd *cobra.Command, fromStdin bool) (string, error) {
	if fromStdin {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read password from stdin: %w", err)
		}
		pw := bytes.TrimRight(b, "\r\n")
		if len(pw) == 0 {
			return "", errors.New("empty password on stdin")
		}
		return string(pw), nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal; use --password or --password-stdin")
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	pwBytes, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	pw := strings.TrimSpace(string(pwBytes))
	if pw == "" {
		return "", errors.New("empty password")
	}
	return pw, nil
}

// passwordFrom: значение флага, если задан, иначе ReadPassword.
func passwordFrom(cmd *cobra.Command, flagValue string, fromStdin bool) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return ReadPassword(cmd, fromStdin)
}
