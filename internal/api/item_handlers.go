package api

import (
	"net/http"

	"passvault/internal/apperr"
	"passvault/internal/database"
)

type CreateItemRequest struct {
	Name        string  `json:"name" example:"Safe combination"`
	Description *string `json:"description" example:"Left, right, left"`
}

type UpdateItemRequest struct {
	ID          int64   `json:"id" example:"1"`
	Name        string  `json:"name" example:"Safe combination"`
	Description *string `json:"description"`
}

type DeleteItemRequest struct {
	ID int64 `json:"id" example:"1"`
}

const msgItemNotFound = "Item not found or you do not have permission to modify it."

// @Summary      Create an item
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      CreateItemRequest  true  "Item"
// @Success      200      {object}  MessageResponse
// @Failure      400      {object}  MessageResponse
// @Router       /create [post]
func (s *Server) CreateItemHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	var req CreateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.Name == "" {
		s.respondError(w, r, apperr.Validation("Name is required."))
		return
	}

	id, err := s.store.CreateItem(r.Context(), database.CreateItemParams{
		UserID:      identity.ID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		s.respondError(w, r, apperr.Internal("Error creating item.", err))
		return
	}

	respond(w, http.StatusOK, "Item created successfully!", envelope{"itemId": id})
}

// @Summary      List items
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  MessageResponse
// @Router       /read [get]
func (s *Server) ReadItemsHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	items, err := s.store.ListItems(r.Context(), identity.ID)
	if err != nil {
		s.respondError(w, r, apperr.Internal("Error reading items.", err))
		return
	}

	respond(w, http.StatusOK, "Items retrieved successfully!", envelope{"items": items})
}

// @Summary      Update an item
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      UpdateItemRequest  true  "Item"
// @Success      200      {object}  MessageResponse
// @Failure      400      {object}  MessageResponse
// @Failure      404      {object}  MessageResponse  "Not found or not owned"
// @Router       /update [put]
func (s *Server) UpdateItemHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	var req UpdateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.ID == 0 {
		s.respondError(w, r, apperr.Validation("Item ID is required."))
		return
	}
	if req.Name == "" {
		s.respondError(w, r, apperr.Validation("Name is required."))
		return
	}

	ok, err := s.store.UpdateItem(r.Context(), database.UpdateItemParams{
		ID:          req.ID,
		UserID:      identity.ID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		s.respondError(w, r, apperr.Internal("Error updating item.", err))
		return
	}
	if !ok {
		s.respondError(w, r, apperr.NotFoundOrForbidden(msgItemNotFound))
		return
	}

	respond(w, http.StatusOK, "Item updated successfully!", nil)
}

// @Summary      Delete an item
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      DeleteItemRequest  true  "Item ID"
// @Success      200      {object}  MessageResponse
// @Failure      400      {object}  MessageResponse
// @Failure      404      {object}  MessageResponse  "Not found or not owned"
// @Router       /delete [delete]
func (s *Server) DeleteItemHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	var req DeleteItemRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.ID == 0 {
		s.respondError(w, r, apperr.Validation("Item ID is required."))
		return
	}

	ok, err := s.store.DeleteItem(r.Context(), req.ID, identity.ID)
	if err != nil {
		s.respondError(w, r, apperr.Internal("Error deleting item.", err))
		return
	}
	if !ok {
		s.respondError(w, r, apperr.NotFoundOrForbidden(msgItemNotFound))
		return
	}

	respond(w, http.StatusOK, "Item deleted successfully!", nil)
}
