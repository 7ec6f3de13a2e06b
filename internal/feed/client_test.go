package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hilotrack/models"
)

func testClient(t *testing.T, payload string, status int) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("pageNo"))
		assert.Equal(t, "20", r.URL.Query().Get("pageSize"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)

	return NewClient(ClientOptions{
		BaseURL:         srv.URL,
		Path:            "/WinGo/WinGo_1M/GetHistoryIssuePage.json",
		PageSize:        20,
		RequestTimeout:  2 * time.Second,
		MaxRetryTimeout: 100 * time.Millisecond,
	})
}

func TestRecentNormalizesPage(t *testing.T) {
	payload := `{"data":{"list":[
		{"issueNumber":"20240101010","number":7,"color":"green"},
		{"issueNumber":"20240101009","number":"4","color":"red"},
		{"issueNumber":"20240101009","number":"4","color":"red"},
		{"issueNumber":"20240101008","number":5,"color":"violet"}
	]}}`

	c := testClient(t, payload, http.StatusOK)
	events, err := c.Recent(context.Background())
	require.NoError(t, err)

	require.Len(t, events, 3, "duplicate issues must be dropped")

	assert.Equal(t, "20240101010", events[0].ID)
	assert.Equal(t, 7, events[0].Magnitude)
	assert.Equal(t, models.CategoryHigh, events[0].Category)
	assert.Equal(t, "green", events[0].ColorTag)

	// Quoted numbers decode as well as bare ones.
	assert.Equal(t, 4, events[1].Magnitude)
	assert.Equal(t, models.CategoryLow, events[1].Category)

	// Threshold boundary: 5 is High.
	assert.Equal(t, models.CategoryHigh, events[2].Category)
}

func TestRecentEmptyPageIsError(t *testing.T) {
	c := testClient(t, `{"data":{"list":[]}}`, http.StatusOK)
	_, err := c.Recent(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty feed page")
}

func TestRecentMalformedBodyIsError(t *testing.T) {
	c := testClient(t, `<html>maintenance</html>`, http.StatusOK)
	_, err := c.Recent(context.Background())
	require.Error(t, err)
}

func TestRecentSkipsUnusableRows(t *testing.T) {
	payload := `{"data":{"list":[
		{"issueNumber":"","number":7,"color":"green"},
		{"issueNumber":"","number":2,"color":"red"}
	]}}`

	c := testClient(t, payload, http.StatusOK)
	_, err := c.Recent(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable rows")
}
