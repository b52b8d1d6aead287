package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/greenhabit/middleware"
	"github.com/cppla/greenhabit/session"
	"github.com/cppla/greenhabit/store"
	"github.com/cppla/greenhabit/utils"
)

// AuthController handles signup, login, logout and the current-user probe.
type AuthController struct {
	store    *store.Store
	sessions *session.Manager
	cookie   CookieConfig
}

// NewAuthController creates an AuthController.
func NewAuthController(s *store.Store, sessions *session.Manager, cookie CookieConfig) *AuthController {
	return &AuthController{store: s, sessions: sessions, cookie: cookie}
}

type credentialsRequest struct {
	Username string `json:"username" form:"username" binding:"required,max=64"`
	Password string `json:"password" form:"password" binding:"required"`
}

// bind accepts JSON or form bodies and normalises the username.
func (req *credentialsRequest) bind(ctx *gin.Context) (string, bool) {
	if err := ctx.ShouldBind(req); err != nil {
		return validationMessage(err), false
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		return "username is required", false
	}
	return "", true
}

// Signup registers a local account and starts a session.
func (a *AuthController) Signup(ctx *gin.Context) {
	var req credentialsRequest
	if msg, ok := req.bind(ctx); !ok {
		utils.Error(ctx, http.StatusBadRequest, 40001, msg)
		return
	}
	// Clients render the username into the DOM.
	if !utils.IsPlainText(req.Username) {
		utils.Error(ctx, http.StatusBadRequest, 40001, "username must be plain text: markup, & and quotes are not allowed")
		return
	}
	if len(req.Password) > utils.MaxPasswordBytes {
		utils.Error(ctx, http.StatusBadRequest, 40001, "password must be at most 72 bytes")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Logger.Error("hash password failed", zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to create user")
		return
	}

	user, err := a.store.CreateUser(ctx.Request.Context(), req.Username, hash)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			utils.Error(ctx, http.StatusBadRequest, 40002, "Username already exists")
			return
		}
		utils.Logger.Error("create user failed", zap.String("username", req.Username), zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to create user")
		return
	}

	if !a.startSession(ctx, user.ID) {
		return
	}
	utils.Logger.Info("user signed up", zap.Uint("user_id", user.ID))
	utils.Success(ctx, gin.H{"success": true})
}

// Login verifies credentials and starts a session. Unknown users and wrong passwords get
// the same answer.
func (a *AuthController) Login(ctx *gin.Context) {
	var req credentialsRequest
	if msg, ok := req.bind(ctx); !ok {
		utils.Error(ctx, http.StatusBadRequest, 40003, msg)
		return
	}

	user, err := a.store.FindUserByUsername(ctx.Request.Context(), req.Username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		utils.Logger.Error("load user failed", zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to log in")
		return
	}
	if user == nil || !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusBadRequest, 40004, "Invalid username or password")
		return
	}

	if !a.startSession(ctx, user.ID) {
		return
	}
	utils.Success(ctx, gin.H{"success": true})
}

// Logout destroys the current session, if any, and clears the cookie.
func (a *AuthController) Logout(ctx *gin.Context) {
	if err := a.sessions.Destroy(ctx.Request.Context(), middleware.SessionToken(ctx)); err != nil {
		utils.Logger.Error("destroy session failed", zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50006, "Could not log out")
		return
	}
	a.cookie.clear(ctx)
	utils.Success(ctx, gin.H{"success": true})
}

// Me reports whether the caller is logged in. A session pointing at a missing user is
// reported as logged out.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Success(ctx, gin.H{"loggedIn": false})
		return
	}

	user, err := a.store.FindUserByID(ctx.Request.Context(), userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			utils.Logger.Warn("load current user failed", zap.Uint("user_id", userID), zap.Error(err))
		}
		utils.Success(ctx, gin.H{"loggedIn": false})
		return
	}

	utils.Success(ctx, gin.H{
		"loggedIn": true,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
		},
	})
}

func (a *AuthController) startSession(ctx *gin.Context, userID uint) bool {
	token, err := a.sessions.Create(ctx.Request.Context(), userID)
	if err != nil {
		utils.Logger.Error("create session failed", zap.Uint("user_id", userID), zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to create session")
		return false
	}
	a.cookie.set(ctx, token)
	return true
}
