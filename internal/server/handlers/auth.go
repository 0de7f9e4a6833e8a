package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/credgate/internal/crypto"
	"github.com/iudanet/credgate/internal/server/storage"
	"github.com/iudanet/credgate/internal/validation"
	"github.com/iudanet/credgate/pkg/api"
)

// ResetRedirectURL is where a successful password reset is redirected:
// /message?message="password reset successfully" with the query encoded
const ResetRedirectURL = "/message?message=%22password+reset+successfully%22"

// PasswordHasher хеширует и проверяет пароли
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// AuthHandler обрабатывает запросы работы с учетными данными
type AuthHandler struct {
	logger      *slog.Logger
	userStorage storage.UserStorage
	hasher      PasswordHasher
	// dummyDigest проверяется при неизвестном email,
	// чтобы время ответа не выдавало существование пользователя
	dummyDigest string
}

// NewAuthHandler создает новый handler для учетных данных
func NewAuthHandler(logger *slog.Logger, userStorage storage.UserStorage, hasher PasswordHasher) *AuthHandler {
	h := &AuthHandler{
		logger:      logger,
		userStorage: userStorage,
		hasher:      hasher,
	}

	if digest, err := hasher.Hash("credgate-unknown-user"); err == nil {
		h.dummyDigest = digest
	}

	return h
}

// Register обрабатывает POST /register
// Регистрация нового пользователя
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode register request", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateRequest(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid register request", slog.Any("error", err))
		h.sendError(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	passwordHash, err := h.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, crypto.ErrPasswordTooLong) {
			h.sendError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	userID, err := h.userStorage.CreateUser(ctx, req.Email, passwordHash)
	if err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			h.logger.WarnContext(ctx, "user already exists", slog.String("email", req.Email))
			h.sendError(w, "Email already exists", http.StatusConflict)
			return
		}
		h.logger.ErrorContext(ctx, "failed to create user", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "user registered successfully",
		slog.String("email", req.Email),
		slog.Int64("user_id", userID))

	h.sendJSON(w, api.MessageResponse{Message: "User registered successfully"}, http.StatusCreated)
}

// Login обрабатывает POST /login
// Проверка email и пароля, без выдачи токенов
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateRequest(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid login request", slog.Any("error", err))
		h.sendError(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.userStorage.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.hasher.Verify(req.Password, h.dummyDigest)
			h.logger.WarnContext(ctx, "login failed: user not found", slog.String("email", req.Email))
			h.sendError(w, "Invalid email or password", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if !h.hasher.Verify(req.Password, user.PasswordHash) {
		h.logger.WarnContext(ctx, "login failed: invalid password", slog.String("email", req.Email))
		h.sendError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	h.logger.InfoContext(ctx, "user logged in successfully",
		slog.String("email", req.Email),
		slog.Int64("user_id", user.ID))

	h.sendJSON(w, api.MessageResponse{Message: "Login successful"}, http.StatusOK)
}

// GetUser обрабатывает GET /user/{email}
func (h *AuthHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Извлекаем email из path parameter (Go 1.22+)
	email := r.PathValue("email")

	user, err := h.userStorage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "user not found", slog.String("email", email))
			h.sendError(w, "User not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.sendJSON(w, api.UserResponse{ID: user.ID, Email: user.Email}, http.StatusOK)
}

// ResetPassword обрабатывает POST /reset-password
// Email берется из заголовка x-user-email, который выставляет gateway.
// Сервис не проверяет, что вызывающий владеет этим email
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode reset request", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateRequest(&req); err != nil {
		h.sendError(w, "New password is required", http.StatusBadRequest)
		return
	}

	email := r.Header.Get(api.HeaderUserEmail)
	if email == "" {
		h.logger.WarnContext(ctx, "reset failed: missing user email header")
		h.sendError(w, "User not found", http.StatusNotFound)
		return
	}

	passwordHash, err := h.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, crypto.ErrPasswordTooLong) {
			h.sendError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	rows, err := h.userStorage.UpdatePasswordHash(ctx, email, passwordHash)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to update password", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if rows == 0 {
		h.logger.WarnContext(ctx, "reset failed: user not found", slog.String("email", email))
		h.sendError(w, "User not found", http.StatusNotFound)
		return
	}

	h.logger.InfoContext(ctx, "password updated successfully", slog.String("email", email))

	http.Redirect(w, r, ResetRedirectURL, http.StatusFound)
}

func (h *AuthHandler) sendJSON(w http.ResponseWriter, data any, statusCode int) {
	WriteJSON(w, h.logger, data, statusCode)
}

func (h *AuthHandler) sendError(w http.ResponseWriter, message string, statusCode int) {
	WriteError(w, h.logger, message, statusCode)
}
