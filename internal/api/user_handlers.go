package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"passvault/internal/apperr"
	"passvault/internal/models"
	"passvault/internal/storage"
)

type UserInfo struct {
	ID             int64   `json:"id" example:"1"`
	FirstName      string  `json:"firstname" example:"Jan"`
	MiddleName     *string `json:"middlename"`
	LastName       string  `json:"lastname" example:"Kowalski"`
	Email          string  `json:"email" example:"jan@example.com"`
	ProfilePicture string  `json:"profilepicture" example:"http://localhost:8080/files/default-profile.png"`
}

type UpdateUserRequest struct {
	FirstName  string  `json:"firstname"`
	MiddleName *string `json:"middlename"`
	LastName   string  `json:"lastname"`
	Email      string  `json:"email"`
}

type VerifyPasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
}

type ChangePasswordRequest struct {
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

// @Summary      Get the current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  UserInfo
// @Failure      404  {object}  MessageResponse
// @Router       /user-info [get]
func (s *Server) GetUserInfoHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	user, err := s.store.GetUserByID(r.Context(), identity.ID)
	if err != nil {
		s.respondError(w, r, apperr.Internal("An error occurred while fetching user information.", err))
		return
	}
	if user == nil {
		s.respondError(w, r, apperr.NotFound("User not found."))
		return
	}

	respond(w, http.StatusOK, "User information retrieved successfully!", envelope{"user": UserInfo{
		ID:             user.ID,
		FirstName:      user.FirstName,
		MiddleName:     user.MiddleName,
		LastName:       user.LastName,
		Email:          user.Email,
		ProfilePicture: orDefault(user.ProfilePicture, s.config.Storage.DefaultProfilePicture),
	}})
}

// @Summary      Update the current user's profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                true  "User ID"
// @Param        request  body      UpdateUserRequest  true  "Profile"
// @Success      200      {object}  MessageResponse
// @Failure      400      {object}  MessageResponse
// @Failure      403      {object}  MessageResponse  "Not your profile"
// @Failure      409      {object}  MessageResponse  "Email already in use"
// @Router       /users/{id} [put]
func (s *Server) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id != identity.ID {
		s.respondError(w, r, apperr.Forbidden("Unauthorized to update this user."))
		return
	}

	var req UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.FirstName == "" || req.LastName == "" || req.Email == "" {
		s.respondError(w, r, apperr.Validation("First name, last name, and email are required."))
		return
	}

	ok, err := s.store.UpdateUserProfile(r.Context(), identity.ID, models.ProfileUpdate{
		FirstName:  req.FirstName,
		MiddleName: optional(req.MiddleName),
		LastName:   req.LastName,
		Email:      req.Email,
	})
	if err != nil {
		if errors.Is(err, models.ErrEmailTaken) {
			s.respondError(w, r, apperr.Conflict("Email already in use."))
			return
		}
		s.respondError(w, r, apperr.Internal("Error updating user information.", err))
		return
	}
	if !ok {
		s.respondError(w, r, apperr.NotFound("User not found."))
		return
	}

	respond(w, http.StatusOK, "Account information updated successfully!", nil)
}

// @Summary      Upload a profile picture
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        profilePicture  formData  file  true  "Image"
// @Success      200             {object}  MessageResponse
// @Failure      400             {object}  MessageResponse
// @Failure      500             {object}  MessageResponse
// @Router       /upload-profile-picture [post]
func (s *Server) UploadProfilePictureHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := parseMultipart(r); err != nil {
		s.respondError(w, r, err)
		return
	}

	url, uploaded, err := s.uploadImage(r, "profilePicture", storage.PrefixProfilePictures, identity.ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if !uploaded {
		s.respondError(w, r, apperr.Validation("No file uploaded."))
		return
	}

	old, found, err := s.store.SwapProfilePicture(r.Context(), identity.ID, url)
	if err != nil || !found {
		s.cleaner.Discard(url)
		if err != nil {
			s.respondError(w, r, apperr.Internal("Error saving profile picture.", err))
		} else {
			s.respondError(w, r, apperr.NotFound("User not found."))
		}
		return
	}
	s.cleaner.Discard(old)

	respond(w, http.StatusOK, "Profile picture updated successfully!", envelope{"profilepicture": url})
}

// @Summary      Get the profile picture URL
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  MessageResponse
// @Failure      404  {object}  MessageResponse
// @Router       /profile-picture [get]
func (s *Server) GetProfilePictureHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	user, err := s.store.GetUserByID(r.Context(), identity.ID)
	if err != nil {
		s.respondError(w, r, apperr.Internal("An unexpected error occurred.", err))
		return
	}
	if user == nil {
		s.respondError(w, r, apperr.NotFound("User not found."))
		return
	}

	respond(w, http.StatusOK, "Profile picture retrieved successfully!", envelope{
		"profilepicture": orDefault(user.ProfilePicture, s.config.Storage.DefaultProfilePicture),
	})
}

// @Summary      Check the current password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      VerifyPasswordRequest  true  "Password"
// @Success      200      {object}  MessageResponse
// @Failure      401      {object}  MessageResponse  "Password does not match"
// @Router       /verify-current-password [post]
func (s *Server) VerifyCurrentPasswordHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	var req VerifyPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.auth.VerifyPassword(r.Context(), identity.ID, req.CurrentPassword); err != nil {
		s.respondError(w, r, err)
		return
	}

	respond(w, http.StatusOK, "Current password matches.", nil)
}

// @Summary      Change the password
// @Description  Returns a new token. The token used for this request stops working.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      ChangePasswordRequest  true  "Passwords"
// @Success      200      {object}  TokenResponse
// @Failure      400      {object}  MessageResponse
// @Failure      401      {object}  MessageResponse
// @Router       /change-password [post]
func (s *Server) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	var req ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	token, err := s.auth.ChangePassword(r.Context(), identity.ID, req.CurrentPassword, req.NewPassword, req.ConfirmNewPassword)
	recordAuthEvent("change_password", err)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respond(w, http.StatusOK, "Password changed successfully!", envelope{"token": token})
}
