package api

// CredentialsRequest представляет тело запросов /register и /login
type CredentialsRequest struct {
	Email    string `json:"email" validate:"required"`    // email пользователя
	Password string `json:"password" validate:"required"` // пароль в открытом виде
}

// ResetPasswordRequest представляет тело запроса /reset-password
// Email берется из заголовка x-user-email, а не из тела
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required"` // новый пароль
}

// UserResponse представляет ответ GET /user/{email}
type UserResponse struct {
	Email string `json:"email"`
	ID    int64  `json:"id"`
}

// MessageResponse представляет ответ с текстовым сообщением
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
