package fixture

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGroupLifecycle(t *testing.T) {
	var created, deleted bool
	var createdName string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/teams":
			var body struct {
				Name  string `json:"name"`
				Email string `json:"email"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			created = true
			createdName = body.Name
			fmt.Fprint(w, `{"teamId": 42}`)
		case r.Method == http.MethodDelete && r.URL.Path == "/api/teams/42":
			deleted = true
			fmt.Fprint(w, `{}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", zerolog.Nop())
	group, cleanup, err := c.CreateGroup(context.Background())
	require.NoError(t, err)

	assert.True(t, created)
	assert.Equal(t, int64(42), group.ID)
	assert.True(t, strings.HasPrefix(group.Name, "bench-group-"))
	assert.Equal(t, createdName, group.Name)
	assert.False(t, deleted)

	cleanup()
	assert.True(t, deleted)
}

func TestCreateGroupUniqueNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"teamId": 1}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", zerolog.Nop())
	a, cleanupA, err := c.CreateGroup(context.Background())
	require.NoError(t, err)
	defer cleanupA()
	b, cleanupB, err := c.CreateGroup(context.Background())
	require.NoError(t, err)
	defer cleanupB()

	assert.NotEqual(t, a.Name, b.Name)
}

func TestCreateGroupWithoutCredentials(t *testing.T) {
	c := NewClient("http://localhost:3000", "", zerolog.Nop())
	_, _, err := c.CreateGroup(context.Background())
	require.ErrorIs(t, err, ErrNoCredentials)
}

func TestCreateGroupServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", zerolog.Nop())
	_, _, err := c.CreateGroup(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
