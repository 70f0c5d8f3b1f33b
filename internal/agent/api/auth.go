// В этом файле описаны методы клиента для работы
// с эндпоинтами пользователей: регистрация и вход.
package api

import "github.com/IvanChernomyrdin/go-artfolio/internal/shared/models"

// Register выполняет регистрацию пользователя на сервере.
//
// Метод отправляет POST запрос на /users. Токен при регистрации не выдаётся,
// после неё нужен отдельный SignIn.
func (c *Client) Register(email, password string) (models.MessageResponse, error) {
	var resp models.MessageResponse
	err := c.PostJSON("/users", models.CredentialsRequest{Email: email, Password: password}, &resp, "")
	return resp, err
}

// SignIn выполняет вход пользователя и возвращает токен доступа.
//
// Метод отправляет POST запрос на /users/sign-in.
func (c *Client) SignIn(email, password string) (string, error) {
	var resp models.SignInResponse
	if err := c.PostJSON("/users/sign-in", models.CredentialsRequest{Email: email, Password: password}, &resp, ""); err != nil {
		return "", err
	}
	return resp.Token, nil
}
