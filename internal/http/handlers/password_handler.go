package handlers

import (
	"net/http"

	"qissa-server/internal/http/middleware"
	"qissa-server/internal/services"
	"qissa-server/internal/utils"

	"github.com/gin-gonic/gin"
)

type PasswordHandler struct {
	passwords *services.PasswordService
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func NewPasswordHandler(passwords *services.PasswordService) *PasswordHandler {
	return &PasswordHandler{passwords: passwords}
}

func (h *PasswordHandler) Forgot(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, "Email is required")
		return
	}

	if err := h.passwords.Forgot(c.Request.Context(), req.Email); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, "Reset password token has been sent to "+req.Email, nil)
}

func (h *PasswordHandler) Reset(c *gin.Context) {
	token := c.Param("token")

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, "Password is required")
		return
	}

	if err := h.passwords.Reset(c.Request.Context(), token, req.Password); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, "Password changed successfully", nil)
}

func (h *PasswordHandler) Change(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		utils.RespondError(c, utils.NewAppError(http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required"))
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, "All fields are mandatory")
		return
	}

	if err := h.passwords.Change(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, "Password changed successfully", nil)
}
