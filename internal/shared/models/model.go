package models

import "time"

// Artwork - плоская модель работы, используемая в HTTP API.
//
// Поля:
//   - ID: идентификатор работы
//   - Title: название (обязательное)
//   - Description: описание, null если не задано
//   - Image: имя файла картинки, сгенерированное сервером (null если картинки нет).
//     Клиент превращает его в URL через ResolveImageSrc
//   - CategoryID: категория, null если не задана
//   - OwnerUserID: владелец, проставляется при создании и больше не меняется
type Artwork struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Image       *string   `json:"image"`
	CategoryID  *int64    `json:"category_id"`
	OwnerUserID int64     `json:"owner_user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Category - справочник категорий, общий для всех пользователей.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CredentialsRequest - тело запросов регистрации и входа.
//
// Используется в:
//
//	POST /users
//	POST /users/sign-in
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInResponse - ответ на успешный вход.
type SignInResponse struct {
	Token string `json:"token"`
}

// MessageResponse - простой ответ с сообщением.
//
// Используется в:
//
//	POST /users              {"message":"User created"}
//	PUT /artworks/{id}       {"message":"Artwork updated","id":1}
//	DELETE /artworks/{id}    {"message":"Artwork deleted","id":1}
type MessageResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
}

// ErrorResponse - стандартный формат ошибки API.
//
// Errors заполняется только для ошибок валидации (поле -> сообщение).
type ErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// UpdateArtworkRequest - JSON-тело partial update.
//
// Используется в:
//
//	PUT /artworks/{id}
//
// Поля - указатели, чтобы отличать "не передано" от пустого значения.
// Пустое description очищает описание.
type UpdateArtworkRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	CategoryID  *int64  `json:"category_id,omitempty"`
}
