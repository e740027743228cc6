package handlers

import (
	"errors"
	"io"
	"strings"

	"qissa-server/internal/http/middleware"
	"qissa-server/internal/services"
	"qissa-server/internal/utils"

	"github.com/gin-gonic/gin"
)

const maxAvatarBytes = 5 << 20

var errAvatarTooLarge = errors.New("avatar file too large")

type ProfileHandler struct {
	profiles *services.ProfileService
}

type UpdateProfileRequest struct {
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Country   *string `json:"country"`
	Gender    *string `json:"gender"`
	Pronoun   *string `json:"pronoun"`
	Bio       *string `json:"bio"`
}

func NewProfileHandler(profiles *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func (h *ProfileHandler) Get(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	user, err := h.profiles.Get(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, "User details", user)
}

// Update accepts either a JSON body or, when an avatar image rides
// along, a multipart form with the profile fields as form values and the
// blob in the "avatar" file part.
func (h *ProfileHandler) Update(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	var in services.ProfileInput
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		parsed, err := parseMultipartProfile(c)
		if err != nil {
			utils.RespondValidationError(c, "Invalid profile form")
			return
		}
		in = parsed
	} else {
		var req UpdateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondValidationError(c, "Invalid profile request")
			return
		}
		in = services.ProfileInput{
			Username:  req.Username,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Country:   req.Country,
			Gender:    req.Gender,
			Pronoun:   req.Pronoun,
			Bio:       req.Bio,
		}
	}

	user, err := h.profiles.Update(c.Request.Context(), userID, in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, "Update profile successfully", user)
}

func parseMultipartProfile(c *gin.Context) (services.ProfileInput, error) {
	var in services.ProfileInput

	in.Username = formValue(c, "username")
	in.FirstName = formValue(c, "first_name")
	in.LastName = formValue(c, "last_name")
	in.Country = formValue(c, "country")
	in.Gender = formValue(c, "gender")
	in.Pronoun = formValue(c, "pronoun")
	in.Bio = formValue(c, "bio")

	file, err := c.FormFile("avatar")
	if err != nil {
		// form without a file part is fine
		return in, nil
	}
	if file.Size > maxAvatarBytes {
		return in, errAvatarTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return in, err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxAvatarBytes))
	if err != nil {
		return in, err
	}
	in.Avatar = data

	return in, nil
}

func formValue(c *gin.Context, key string) *string {
	if val, ok := c.GetPostForm(key); ok {
		return &val
	}
	return nil
}
