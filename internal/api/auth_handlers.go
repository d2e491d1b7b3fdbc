package api

import (
	"fmt"
	"net/http"

	"passvault/internal/auth"
	"passvault/internal/mailer"
)

type EmailRequest struct {
	Email string `json:"email" example:"jan@example.com"`
}

type RegisterRequest struct {
	FirstName  string  `json:"firstname" example:"Jan"`
	MiddleName *string `json:"middlename" example:"Maria"`
	LastName   string  `json:"lastname" example:"Kowalski"`
	Email      string  `json:"email" example:"jan@example.com"`
	Password   string  `json:"password" example:"correct horse battery staple"`
	OTP        string  `json:"otp" example:"482913"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" example:"jan@example.com"`
	OTP   string `json:"otp" example:"482913"`
}

type ResetPasswordRequest struct {
	Email              string `json:"email" example:"jan@example.com"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

type LoginRequest struct {
	Email    string `json:"email" example:"jan@example.com"`
	Password string `json:"password" example:"correct horse battery staple"`
}

func authRegistration(req RegisterRequest) auth.Registration {
	return auth.Registration{
		FirstName:  req.FirstName,
		MiddleName: optional(req.MiddleName),
		LastName:   req.LastName,
		Email:      req.Email,
		Password:   req.Password,
		OTP:        req.OTP,
	}
}

// optional maps an empty string to nil.
func optional(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// @Summary      Request a registration OTP
// @Description  Emails a six digit code that proves ownership of an address not yet registered.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      EmailRequest  true  "Email"
// @Success      200      {object}  MessageResponse
// @Failure      400      {object}  MessageResponse
// @Failure      409      {object}  MessageResponse  "Email already in use"
// @Failure      500      {object}  MessageResponse
// @Router       /request-otp [post]
func (s *Server) RequestOTPHandler(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	err := s.auth.RequestOTP(r.Context(), mailer.PurposeRegistration, req.Email)
	recordAuthEvent("otp_registration", err)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respond(w, http.StatusOK, fmt.Sprintf("OTP sent successfully to %s", req.Email), nil)
}

// @Summary      Request a password reset OTP
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      EmailRequest  true  "Email"
// @Success      200      {object}  MessageResponse
// @Failure      400      {object}  MessageResponse
// @Failure      404      {object}  MessageResponse  "Email not found"
// @Failure      500      {object}  MessageResponse
// @Router       /forgot-password/request-otp [post]
func (s *Server) RequestPasswordResetOTPHandler(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	err := s.auth.RequestOTP(r.Context(), mailer.PurposePasswordReset, req.Email)
	recordAuthEvent("otp_reset", err)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respond(w, http.StatusOK, fmt.Sprintf("Password reset OTP sent successfully to %s", req.Email), nil)
}

// @Summary      Register with an OTP
// @Description  Creates the account once the emailed code checks out and returns a session token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      RegisterRequest  true  "Registration"
// @Success      200      {object}  TokenResponse
// @Failure      400      {object}  MessageResponse  "Missing fields or expired OTP"
// @Failure      401      {object}  MessageResponse  "Wrong OTP"
// @Failure      404      {object}  MessageResponse  "No pending OTP"
// @Failure      409      {object}  MessageResponse  "Email already in use"
// @Router       /verify-otp-and-register [post]
func (s *Server) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	token, err := s.auth.Register(r.Context(), authRegistration(req))
	recordAuthEvent("register", err)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respond(w, http.StatusOK, "Registration successful!", envelope{"token": token})
}

// @Summary      Verify a password reset OTP
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      VerifyOTPRequest  true  "Email and OTP"
// @Success      200      {object}  MessageResponse
// @Failure      400      {object}  MessageResponse
// @Failure      401      {object}  MessageResponse
// @Failure      404      {object}  MessageResponse
// @Router       /forgot-password/verify-otp [post]
func (s *Server) VerifyResetOTPHandler(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	err := s.auth.VerifyResetOTP(r.Context(), req.Email, req.OTP)
	recordAuthEvent("reset_verify", err)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respond(w, http.StatusOK, "OTP verified successfully. You can now reset your password.", nil)
}

// @Summary      Reset the password
// @Description  Sets a new password after the reset OTP was verified. Every session is signed out.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      ResetPasswordRequest  true  "New password"
// @Success      200      {object}  MessageResponse
// @Failure      400      {object}  MessageResponse
// @Failure      403      {object}  MessageResponse  "Reset not verified"
// @Failure      404      {object}  MessageResponse
// @Router       /forgot-password/reset [post]
func (s *Server) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	err := s.auth.ResetPassword(r.Context(), req.Email, req.NewPassword, req.ConfirmNewPassword)
	recordAuthEvent("reset", err)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respond(w, http.StatusOK, "Password has been reset successfully! Please log in with your new password.", nil)
}

// @Summary      Log in
// @Description  Returns a session token. Any previously issued token stops working.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      LoginRequest  true  "Credentials"
// @Success      200      {object}  TokenResponse
// @Failure      401      {object}  MessageResponse  "Invalid credentials!"
// @Router       /login [post]
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	token, err := s.auth.Login(r.Context(), req.Email, req.Password)
	recordAuthEvent("login", err)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respond(w, http.StatusOK, "Login successful!", envelope{"token": token})
}

// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  MessageResponse
// @Failure      401  {object}  MessageResponse
// @Failure      403  {object}  MessageResponse
// @Router       /logout [post]
func (s *Server) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	if err := s.auth.Logout(r.Context(), identity.ID); err != nil {
		s.respondError(w, r, err)
		return
	}

	respond(w, http.StatusOK, "Logout successful!", nil)
}
