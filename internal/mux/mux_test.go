package mux

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"riverroom-server/pkg/history"
	"riverroom-server/pkg/room"
	"riverroom-server/pkg/wallet"
)

func testMux(t *testing.T) *httptest.Server {
	t.Helper()

	pitBoss := room.NewPitBoss(wallet.NewMem(nil), history.NewMem(), 0)
	pitBoss.StartShift()

	ts := httptest.NewServer(NewMux("test", pitBoss))
	t.Cleanup(ts.Close)
	return ts
}

func TestMux_getHealth(t *testing.T) {
	ts := testMux(t)

	var resp healthResponse
	assertGet(t, ts, "/health", &resp, http.StatusOK)
	assert.Equal(t, "OK", resp.Status)
	assert.Equal(t, "test", resp.Version)
}

func TestMux_authRequired(t *testing.T) {
	ts := testMux(t)

	var resp errorResponse
	assertGet(t, ts, "/table", &resp, http.StatusUnauthorized)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMux_postPlayerValidation(t *testing.T) {
	ts := testMux(t)

	var resp errorResponse
	assertPost(t, ts, "/player", playerPayload{}, &resp, http.StatusBadRequest)
	assert.Contains(t, resp.Message, "display name")

	assertPost(t, ts, "/player", playerPayload{
		DisplayName: "Player One",
		Email:       "not-an-email",
	}, &resp, http.StatusBadRequest)
	assert.Equal(t, "missing or invalid email address", resp.Message)

	assertPost(t, ts, "/player", playerPayload{
		DisplayName: "Player One",
		Email:       "player@example.com",
		Password:    "short",
	}, &resp, http.StatusBadRequest)
	assert.Equal(t, "password must be 6 or more characters", resp.Message)
}

func TestMux_postPlayerRequiresJSON(t *testing.T) {
	ts := testMux(t)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/player", nil)
	assert.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	assert.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}
