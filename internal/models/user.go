package models

// User представляет учетную запись в хранилище
type User struct {
	Email        string `json:"email"` // уникальный email (с учетом регистра)
	PasswordHash string `json:"-"`     // bcrypt хеш пароля, наружу не отдается
	ID           int64  `json:"id"`    // автоинкрементный идентификатор, не переиспользуется
	Counter      int64  `json:"-"`     // служебный счетчик, по умолчанию 0
}
