package mockapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/niksmo/storefront/internal/core/domain"
)

type (
	loginRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	registerRequest struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
)

func (a *API) login(c *gin.Context) {
	const op = "mockapi.login"

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "email and password are required")
		return
	}

	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	acc, ok := a.store.findAccount(req.Email)
	if !ok || !a.store.checkPassword(acc, req.Password) {
		fail(c, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if acc.blocked {
		fail(c, http.StatusForbidden, "blocked")
		return
	}

	a.issueSession(c, op, acc.user)
}

func (a *API) register(c *gin.Context) {
	const op = "mockapi.register"

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "name, email and password are required")
		return
	}

	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	if _, exists := a.store.findAccount(req.Email); exists {
		fail(c, http.StatusConflict, "email already registered")
		return
	}

	a.store.mustAddAccount(domain.User{
		Name: req.Name, Email: strings.ToLower(req.Email), Role: "customer",
	}, req.Password, false)

	acc, _ := a.store.findAccount(req.Email)
	a.issueSession(c, op, acc.user)
}

func (a *API) issueSession(c *gin.Context, op string, user domain.User) {
	token, err := a.tokens.Issue(user.ID)
	if err != nil {
		slog.Error("failed to issue token", "op", op, "err", err)
		fail(c, http.StatusInternalServerError, "token signing failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (a *API) logout(c *gin.Context) {
	// Tokens are stateless, there is nothing to revoke.
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (a *API) refresh(c *gin.Context) {
	const op = "mockapi.refresh"

	a.store.mu.Lock()
	acc, ok := a.store.accountByID(currentUserID(c))
	a.store.mu.Unlock()
	if !ok {
		fail(c, http.StatusUnauthorized, "unknown user")
		return
	}
	a.issueSession(c, op, acc.user)
}

func (a *API) getProfile(c *gin.Context) {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	acc, ok := a.store.accountByID(currentUserID(c))
	if !ok {
		fail(c, http.StatusNotFound, "user not found")
		return
	}
	c.JSON(http.StatusOK, acc.user)
}

func (a *API) updateProfile(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		fail(c, http.StatusBadRequest, "invalid profile payload")
		return
	}

	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	acc, ok := a.store.accountByID(currentUserID(c))
	if !ok {
		fail(c, http.StatusNotFound, "user not found")
		return
	}

	if v, ok := fields["name"].(string); ok && v != "" {
		acc.user.Name = v
	}
	if v, ok := fields["phone"].(string); ok {
		acc.user.Phone = v
	}
	c.JSON(http.StatusOK, acc.user)
}

// uploadAvatar accepts a multipart file and returns the served path. The
// mock does not store the bytes, only the generated name.
func (a *API) uploadAvatar(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "file field is required")
		return
	}

	ext := filepath.Ext(file.Filename)
	name := fmt.Sprintf("/uploads/avatars/%s%s", uuid.NewString(), ext)

	a.store.mu.Lock()
	if acc, ok := a.store.accountByID(currentUserID(c)); ok {
		acc.user.Avatar = name
	}
	a.store.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"avatar": name})
}
