package api

import (
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"passvault/internal/models"
)

func listAccounts(t *testing.T, token string) []models.Account {
	t.Helper()
	rr := doJSON(t, http.MethodGet, "/accounts", token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decode[struct {
		Accounts []models.Account `json:"accounts"`
	}](t, rr).Accounts
}

func accountFields(site string) map[string]string {
	return map[string]string{"site": site, "username": "jan", "password": "hunter2"}
}

func TestAccountWithoutImageUsesPlaceholder(t *testing.T) {
	token := registerUser(t, uniqueEmail("acc-plain"), "secret-password")

	rr := multipartRequest(t, http.MethodPost, "/accounts", token, accountFields("example.com"), "", "", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Positive(t, decode[map[string]any](t, rr)["accountId"].(float64))

	accounts := listAccounts(t, token)
	require.Len(t, accounts, 1)
	require.Equal(t, "example.com", accounts[0].Site)
	require.Equal(t, "hunter2", accounts[0].Password)
	require.Equal(t, testServer.config.Storage.DefaultAccountImage, accounts[0].Image)
}

func TestAccountMissingFields(t *testing.T) {
	token := registerUser(t, uniqueEmail("acc-missing"), "secret-password")

	rr := multipartRequest(t, http.MethodPost, "/accounts", token, map[string]string{"site": "x"}, "", "", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAccountImageLifecycle(t *testing.T) {
	token := registerUser(t, uniqueEmail("acc-image"), "secret-password")

	rr := multipartRequest(t, http.MethodPost, "/accounts", token, accountFields("github.com"), "image", "logo.png", pngBytes("v1"))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	id := int64(decode[map[string]any](t, rr)["accountId"].(float64))

	first := listAccounts(t, token)[0].Image
	require.FileExists(t, localPath(t, first))
	path := fmt.Sprintf("/accounts/%d", id)

	// Without a file the stored image stays.
	rr = multipartRequest(t, http.MethodPut, path, token, accountFields("github.com"), "", "", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Equal(t, first, listAccounts(t, token)[0].Image)

	rr = multipartRequest(t, http.MethodPut, path, token, accountFields("gitlab.com"), "image", "logo2.png", pngBytes("v2"))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	second := listAccounts(t, token)[0]
	require.Equal(t, "gitlab.com", second.Site)
	require.NotEqual(t, first, second.Image)
	require.Eventually(t, func() bool {
		_, err := os.Stat(localPath(t, first))
		return os.IsNotExist(err)
	}, 2*time.Second, 20*time.Millisecond)

	fields := accountFields("gitlab.com")
	fields["image"] = testServer.config.Storage.DefaultAccountImage
	rr = multipartRequest(t, http.MethodPut, path, token, fields, "", "", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Equal(t, testServer.config.Storage.DefaultAccountImage, listAccounts(t, token)[0].Image)
	require.Eventually(t, func() bool {
		_, err := os.Stat(localPath(t, second.Image))
		return os.IsNotExist(err)
	}, 2*time.Second, 20*time.Millisecond)

	rr = doJSON(t, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Empty(t, listAccounts(t, token))
}

func TestAccountOwnership(t *testing.T) {
	owner := registerUser(t, uniqueEmail("acc-owner"), "secret-password")
	intruder := registerUser(t, uniqueEmail("acc-intruder"), "secret-password")

	rr := multipartRequest(t, http.MethodPost, "/accounts", owner, accountFields("bank.example"), "", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	id := int64(decode[map[string]any](t, rr)["accountId"].(float64))
	path := fmt.Sprintf("/accounts/%d", id)
	missingPath := fmt.Sprintf("/accounts/%d", id+1_000_000)

	foreignUpdate := multipartRequest(t, http.MethodPut, path, intruder, accountFields("evil.example"), "", "", nil)
	require.Equal(t, http.StatusNotFound, foreignUpdate.Code)
	require.Equal(t, msgAccountNotFound, decode[apiResponse](t, foreignUpdate).Message)

	missingUpdate := multipartRequest(t, http.MethodPut, missingPath, intruder, accountFields("evil.example"), "", "", nil)
	require.Equal(t, foreignUpdate.Code, missingUpdate.Code)
	require.JSONEq(t, foreignUpdate.Body.String(), missingUpdate.Body.String(), "a foreign id looks like a missing one")

	foreignDelete := doJSON(t, http.MethodDelete, path, intruder, nil)
	require.Equal(t, http.StatusNotFound, foreignDelete.Code)

	missingDelete := doJSON(t, http.MethodDelete, missingPath, intruder, nil)
	require.Equal(t, foreignDelete.Code, missingDelete.Code)
	require.JSONEq(t, foreignDelete.Body.String(), missingDelete.Body.String())

	require.Empty(t, listAccounts(t, intruder))
	require.Equal(t, "bank.example", listAccounts(t, owner)[0].Site)
}

func TestAccountInvalidID(t *testing.T) {
	token := registerUser(t, uniqueEmail("acc-id"), "secret-password")
	rr := doJSON(t, http.MethodDelete, "/accounts/abc", token, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}
