package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"passvault/internal/apperr"
	"passvault/internal/database"
	"passvault/internal/storage"
)

const msgAccountNotFound = "Account not found or you do not have permission to modify it."

type accountForm struct {
	site, username, password string
}

func readAccountForm(r *http.Request) (accountForm, error) {
	f := accountForm{
		site:     r.FormValue("site"),
		username: r.FormValue("username"),
		password: r.FormValue("password"),
	}
	if f.site == "" || f.username == "" || f.password == "" {
		return f, apperr.Validation("Site, username, and password are required.")
	}
	return f, nil
}

func accountID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("Invalid account ID.")
	}
	return id, nil
}

// @Summary      Create an account
// @Tags         accounts
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        site      formData  string  true   "Site"
// @Param        username  formData  string  true   "Username"
// @Param        password  formData  string  true   "Password"
// @Param        image     formData  file    false  "Logo"
// @Success      200       {object}  MessageResponse
// @Failure      400       {object}  MessageResponse
// @Failure      500       {object}  MessageResponse
// @Router       /accounts [post]
func (s *Server) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := parseMultipart(r); err != nil {
		s.respondError(w, r, err)
		return
	}
	form, err := readAccountForm(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	image := s.config.Storage.DefaultAccountImage
	url, uploaded, err := s.uploadImage(r, "image", storage.PrefixAccounts, identity.ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if uploaded {
		image = url
	}

	account, err := s.store.CreateAccount(r.Context(), database.CreateAccountParams{
		UserID:   identity.ID,
		Site:     form.site,
		Username: form.username,
		Password: form.password,
		Image:    image,
	})
	if err != nil {
		if uploaded {
			s.cleaner.Discard(url)
		}
		s.respondError(w, r, apperr.Internal("Error creating account.", err))
		return
	}

	respond(w, http.StatusOK, "Account created successfully!", envelope{"accountId": account.ID})
}

// @Summary      List accounts
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  MessageResponse
// @Router       /accounts [get]
func (s *Server) ListAccountsHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	accounts, err := s.store.ListAccounts(r.Context(), identity.ID)
	if err != nil {
		s.respondError(w, r, apperr.Internal("Error reading accounts.", err))
		return
	}
	for i := range accounts {
		accounts[i].Image = orDefault(accounts[i].Image, s.config.Storage.DefaultAccountImage)
	}

	respond(w, http.StatusOK, "Accounts retrieved successfully!", envelope{"accounts": accounts})
}

// @Summary      Update an account
// @Description  Replaces site, username and password. A new image file replaces the old one; an image field equal to the placeholder clears it.
// @Tags         accounts
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id        path      int     true   "Account ID"
// @Param        site      formData  string  true   "Site"
// @Param        username  formData  string  true   "Username"
// @Param        password  formData  string  true   "Password"
// @Param        image     formData  file    false  "Logo"
// @Success      200       {object}  MessageResponse
// @Failure      400       {object}  MessageResponse
// @Failure      404       {object}  MessageResponse  "Not found or not owned"
// @Router       /accounts/{id} [put]
func (s *Server) UpdateAccountHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	id, err := accountID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := parseMultipart(r); err != nil {
		s.respondError(w, r, err)
		return
	}
	form, err := readAccountForm(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var image *string
	url, uploaded, err := s.uploadImage(r, "image", storage.PrefixAccounts, identity.ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if uploaded {
		image = &url
	} else if s.isAccountPlaceholder(r.FormValue("image")) {
		placeholder := s.config.Storage.DefaultAccountImage
		image = &placeholder
	}

	old, found, err := s.store.UpdateAccount(r.Context(), database.UpdateAccountParams{
		ID:       id,
		UserID:   identity.ID,
		Site:     form.site,
		Username: form.username,
		Password: form.password,
		Image:    image,
	})
	if err != nil || !found {
		if uploaded {
			s.cleaner.Discard(url)
		}
		if err != nil {
			s.respondError(w, r, apperr.Internal("Error updating account.", err))
		} else {
			s.respondError(w, r, apperr.NotFoundOrForbidden(msgAccountNotFound))
		}
		return
	}
	if image != nil && *image != old {
		s.cleaner.Discard(old)
	}

	respond(w, http.StatusOK, "Account updated successfully!", nil)
}

// isAccountPlaceholder accepts the full placeholder URL or its bare object path.
func (s *Server) isAccountPlaceholder(v string) bool {
	if v == "" {
		return false
	}
	def := s.config.Storage.DefaultAccountImage
	if v == def {
		return true
	}
	key, ok := s.storage.KeyFromURL(def)
	return ok && (v == key || v == "images/"+key)
}

// @Summary      Delete an account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Account ID"
// @Success      200  {object}  MessageResponse
// @Failure      404  {object}  MessageResponse  "Not found or not owned"
// @Router       /accounts/{id} [delete]
func (s *Server) DeleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	id, err := accountID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	image, found, err := s.store.DeleteAccount(r.Context(), id, identity.ID)
	if err != nil {
		s.respondError(w, r, apperr.Internal("Error deleting account.", err))
		return
	}
	if !found {
		s.respondError(w, r, apperr.NotFoundOrForbidden(msgAccountNotFound))
		return
	}
	s.cleaner.Discard(image)

	respond(w, http.StatusOK, "Account deleted successfully!", nil)
}
