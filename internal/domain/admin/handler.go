package admin

import (
	"log/slog"
	"net/http"

	"contactdesk/internal/common"

	"github.com/gin-gonic/gin"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// Handler handles HTTP requests for admin authentication.
type Handler struct {
	service           *Service
	cookie            CookieConfig
	allowRegistration bool
}

// NewHandler creates a new admin handler.
func NewHandler(service *Service, cookie CookieConfig, allowRegistration bool) *Handler {
	return &Handler{
		service:           service,
		cookie:            cookie,
		allowRegistration: allowRegistration,
	}
}

// Register handles POST /api/register
func (h *Handler) Register(c *gin.Context) {
	var creds Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		common.Error(c, http.StatusBadRequest, "入力が無効です: "+err.Error())
		return
	}

	user, session, err := h.service.Register(c.Request.Context(), &creds)
	if err != nil {
		slog.Error("admin registration failed", "username", creds.Username, "error", err)
		common.HandleError(c, err)
		return
	}

	h.setCookie(c, session.ID)
	common.Success(c, http.StatusOK, AuthResponse{Message: MsgRegistered, User: toResponse(user)})
}

// Login handles POST /api/login
func (h *Handler) Login(c *gin.Context) {
	var creds Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		common.Error(c, http.StatusBadRequest, "入力が無効です: "+err.Error())
		return
	}

	user, session, err := h.service.Login(c.Request.Context(), &creds)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	h.setCookie(c, session.ID)
	common.Success(c, http.StatusOK, AuthResponse{Message: MsgLoggedIn, User: toResponse(user)})
}

// Logout handles POST /api/logout
func (h *Handler) Logout(c *gin.Context) {
	sessionID, _ := c.Cookie(h.cookie.Name)

	if err := h.service.Logout(c.Request.Context(), sessionID); err != nil {
		slog.Error("logout failed", "error", err)
		common.Error(c, http.StatusInternalServerError, "ログアウトに失敗しました")
		return
	}

	h.clearCookie(c)
	common.Success(c, http.StatusOK, gin.H{"message": MsgLoggedOut})
}

// CurrentUser handles GET /api/user
func (h *Handler) CurrentUser(c *gin.Context) {
	user, ok := c.MustGet(ContextUserKey).(*User)
	if !ok {
		common.Error(c, http.StatusUnauthorized, MsgNotSignedIn)
		return
	}
	common.Success(c, http.StatusOK, toResponse(user))
}

// RegisterRoutes registers the public auth routes and the session-protected ones.
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	if h.allowRegistration {
		public.POST("/register", h.Register)
	}
	public.POST("/login", h.Login)
	public.POST("/logout", h.Logout)
	protected.GET("/user", h.CurrentUser)
}

func (h *Handler) setCookie(c *gin.Context, sessionID string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, sessionID, int(h.service.SessionTTL().Seconds()), "/", "", h.cookie.Secure, true)
}

func (h *Handler) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
}
