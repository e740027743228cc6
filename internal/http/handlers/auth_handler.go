package handlers

import (
	"qissa-server/internal/http/middleware"
	"qissa-server/internal/services"
	"qissa-server/internal/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth *services.AuthService
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Country   string `json:"country"`
	Gender    string `json:"gender"`
	Pronoun   string `json:"pronoun"`
	Bio       string `json:"bio"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, "Invalid registration request")
		return
	}

	user, token, err := h.auth.Register(c.Request.Context(), services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Country:   req.Country,
		Gender:    req.Gender,
		Pronoun:   req.Pronoun,
		Bio:       req.Bio,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	h.setSessionCookie(c, token)
	utils.RespondCreated(c, "User registered successfully", user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, "All fields are required")
		return
	}

	user, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	h.setSessionCookie(c, token)
	utils.RespondOK(c, "User logged in successfully", user)
}

// Logout only clears the cookie. The token itself stays valid until its
// expiry; there is no server-side revocation list.
func (h *AuthHandler) Logout(c *gin.Context) {
	opts := h.auth.CookieOptions()
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", opts.Secure, opts.HTTPOnly)
	utils.RespondOK(c, "User logged out successfully", nil)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	opts := h.auth.CookieOptions()
	c.SetCookie(opts.Name, token, opts.MaxAgeSecs, "/", "", opts.Secure, opts.HTTPOnly)
}
