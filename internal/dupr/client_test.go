package dupr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/dupr-insight/internal/config"
)

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	httpClient := NewRateLimitedHTTPClient(HTTPClientConfig{
		Timeout:           5 * time.Second,
		MaxRetries:        0,
		RetryWaitMin:      time.Millisecond,
		RetryWaitMax:      time.Millisecond,
		RateLimit:         1000,
		CircuitBreakerMax: 100,
	}, logger)

	return NewClient(&config.DUPRConfig{
		APIURL:   serverURL,
		Email:    "crawler@example.com",
		Password: "secret",
	}, httpClient, logger)
}

func loginHandler(token string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Email == "" || req.Password == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fmt.Fprintf(w, `{"status":"SUCCESS","result":{"token":"%s"}}`, token)
	}
}

func TestLoginStoresToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1.0/login", loginHandler("tok-1"))
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)
	require.True(t, client.NeedsRefresh())

	require.NoError(t, client.Login(context.Background()))
	assert.Equal(t, "tok-1", client.Token())
	assert.False(t, client.NeedsRefresh())

	client.Logout()
	assert.Empty(t, client.Token())
}

func TestLoginWithoutCredentials(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:0")
	client.config.Email = ""

	err := client.Login(context.Background())
	var authErr *AuthenticationError
	assert.ErrorAs(t, err, &authErr)
}

// A rejected token triggers exactly one re-login and a retry of the original
// request.
func TestRequestRefreshesTokenOn401(t *testing.T) {
	logins := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1.0/login", func(w http.ResponseWriter, r *http.Request) {
		logins++
		fmt.Fprintf(w, `{"result":{"token":"tok-%d"}}`, logins)
	})
	mux.HandleFunc("/player/v1.0/42", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"result":{"id":42,"fullName":"Alex Doe","ratings":{"singles":{"display":"4.1"},"doubles":{"display":"NR"}}}}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)

	profile, err := client.GetPlayer(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, 1, logins)
	assert.Equal(t, "Alex Doe", profile.FullName)
	assert.Equal(t, "4.1", profile.SinglesDisplay)
	assert.Equal(t, "NR", profile.DoublesDisplay)
}

func TestGetMembersByClubPaging(t *testing.T) {
	// Three pages at the fixed page size of 25.
	members := make([]string, 60)
	for i := range members {
		members[i] = fmt.Sprintf("Member %02d", i)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1.0/login", loginHandler("tok-1"))
	mux.HandleFunc("/club/777/members/v1.0/all", func(w http.ResponseWriter, r *http.Request) {
		var req membersRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		end := req.Offset + req.Limit
		if end > len(members) {
			end = len(members)
		}
		hits := make([]map[string]interface{}, 0)
		for i := req.Offset; i < end; i++ {
			hits = append(hits, map[string]interface{}{
				"id":       1000 + i,
				"fullName": members[i],
				"clubName": "Riverside Picklers",
				"singles":  4.0,
				"doubles":  "NR",
			})
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "SUCCESS",
			"result": map[string]interface{}{
				"offset": req.Offset,
				"limit":  req.Limit,
				"total":  len(members),
				"hits":   hits,
			},
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)
	require.NoError(t, client.Login(context.Background()))

	got, err := client.GetMembersByClub(context.Background(), "777", 0)
	require.NoError(t, err)
	require.Len(t, got, len(members))
	assert.Equal(t, "1000", got[0].ID)
	assert.Equal(t, "Member 00", got[0].FullName)
	assert.Equal(t, "Member 59", got[len(got)-1].FullName)
	require.NotNil(t, got[0].Singles)
	assert.Equal(t, 4.0, *got[0].Singles)
	assert.Nil(t, got[0].Doubles)

	t.Run("member cap", func(t *testing.T) {
		capped, err := client.GetMembersByClub(context.Background(), "777", 3)
		require.NoError(t, err)
		assert.Len(t, capped, 3)
	})
}

func TestRequestSurfacesAPIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1.0/login", loginHandler("tok-1"))
	mux.HandleFunc("/player/v1.0/42", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"player not found"}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)
	require.NoError(t, client.Login(context.Background()))

	_, err := client.GetPlayer(context.Background(), "42")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}
