package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"passvault/internal/models"
)

func TestItemCRUD(t *testing.T) {
	token := registerUser(t, uniqueEmail("items"), "secret-password")

	rr := doJSON(t, http.MethodGet, "/read", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	empty := decode[struct {
		Items []models.Item `json:"items"`
	}](t, rr)
	require.NotNil(t, empty.Items)
	require.Empty(t, empty.Items)

	desc := "Left, right, left"
	rr = doJSON(t, http.MethodPost, "/create", token, CreateItemRequest{Name: "Safe", Description: &desc})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	id := int64(decode[map[string]any](t, rr)["itemId"].(float64))
	require.Positive(t, id)

	rr = doJSON(t, http.MethodPut, "/update", token, UpdateItemRequest{ID: id, Name: "Vault"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = doJSON(t, http.MethodGet, "/read", token, nil)
	items := decode[struct {
		Items []models.Item `json:"items"`
	}](t, rr).Items
	require.Len(t, items, 1)
	require.Equal(t, "Vault", items[0].Name)
	require.Nil(t, items[0].Description)

	rr = doJSON(t, http.MethodDelete, "/delete", token, DeleteItemRequest{ID: id})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, http.MethodDelete, "/delete", token, DeleteItemRequest{ID: id})
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestItemValidation(t *testing.T) {
	token := registerUser(t, uniqueEmail("items-bad"), "secret-password")

	rr := doJSON(t, http.MethodPost, "/create", token, CreateItemRequest{})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, http.MethodPut, "/update", token, UpdateItemRequest{Name: "x"})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, http.MethodDelete, "/delete", token, DeleteItemRequest{})
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestItemOwnership(t *testing.T) {
	owner := registerUser(t, uniqueEmail("owner"), "secret-password")
	intruder := registerUser(t, uniqueEmail("intruder"), "secret-password")

	rr := doJSON(t, http.MethodPost, "/create", owner, CreateItemRequest{Name: "Mine"})
	require.Equal(t, http.StatusOK, rr.Code)
	id := int64(decode[map[string]any](t, rr)["itemId"].(float64))

	foreignUpdate := doJSON(t, http.MethodPut, "/update", intruder, UpdateItemRequest{ID: id, Name: "Stolen"})
	require.Equal(t, http.StatusNotFound, foreignUpdate.Code)
	require.Equal(t, msgItemNotFound, decode[apiResponse](t, foreignUpdate).Message)

	missingUpdate := doJSON(t, http.MethodPut, "/update", intruder, UpdateItemRequest{ID: id + 1_000_000, Name: "Stolen"})
	require.Equal(t, foreignUpdate.Code, missingUpdate.Code)
	require.JSONEq(t, foreignUpdate.Body.String(), missingUpdate.Body.String(), "a foreign id looks like a missing one")

	foreignDelete := doJSON(t, http.MethodDelete, "/delete", intruder, DeleteItemRequest{ID: id})
	require.Equal(t, http.StatusNotFound, foreignDelete.Code)

	missingDelete := doJSON(t, http.MethodDelete, "/delete", intruder, DeleteItemRequest{ID: id + 1_000_000})
	require.Equal(t, foreignDelete.Code, missingDelete.Code)
	require.JSONEq(t, foreignDelete.Body.String(), missingDelete.Body.String())

	rr = doJSON(t, http.MethodGet, "/read", intruder, nil)
	require.Empty(t, decode[struct {
		Items []models.Item `json:"items"`
	}](t, rr).Items)
}
