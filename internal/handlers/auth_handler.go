package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"employee-directory/internal/models"
	"employee-directory/internal/repository"
	"employee-directory/internal/session"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	users    repository.UserStore
	sessions *session.Manager
	log      *slog.Logger
}

func NewAuthHandler(users repository.UserStore, sessions *session.Manager, log *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, log: log}
}

// Register creates a new admin account
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input models.RegisterRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Invalid input")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		fault(c, http.StatusInternalServerError, "Failed to hash password", err)
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(),
		strings.TrimSpace(input.Name), normalizeEmail(input.Email), string(hashedPassword))
	if errors.Is(err, repository.ErrUserExists) {
		fail(c, http.StatusConflict, "User already exists")
		return
	}
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "failed to create user", "error", err)
		fault(c, http.StatusInternalServerError, "Failed to create user", err)
		return
	}

	ok(c, http.StatusCreated, user)
}

// Login checks credentials and sets the session cookie
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input models.LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Invalid input")
		return
	}

	user, err := h.users.FindUserByEmail(c.Request.Context(), normalizeEmail(input.Email))
	if errors.Is(err, repository.ErrUserNotFound) {
		fail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "failed to load user", "error", err)
		fault(c, http.StatusInternalServerError, "Server error", err)
		return
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		fail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.sessions.Issue(user.ID, user.Email)
	if err != nil {
		fault(c, http.StatusInternalServerError, "Failed to start session", err)
		return
	}
	http.SetCookie(c.Writer, h.sessions.Cookie(token))

	h.log.InfoContext(c.Request.Context(), "user logged in", "user_id", user.ID)
	ok(c, http.StatusOK, user)
}

// Logout clears the session cookie
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	http.SetCookie(c.Writer, h.sessions.ClearCookie())
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}

// Me returns the logged-in account
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.users.FindUserByID(c.Request.Context(), c.GetString("user_id"))
	if errors.Is(err, repository.ErrUserNotFound) {
		fail(c, http.StatusUnauthorized, "User not found")
		return
	}
	if err != nil {
		fault(c, http.StatusInternalServerError, "Server error", err)
		return
	}
	ok(c, http.StatusOK, user)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
