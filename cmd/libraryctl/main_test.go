package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryhub/internal/app"
	"libraryhub/internal/auth"
	"libraryhub/internal/client"
	"libraryhub/internal/config"
	"libraryhub/internal/store/storetest"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLibraryctl(t *testing.T) {
	srv := httptest.NewServer(app.New(app.Deps{
		Config:   &config.Config{JWTSecret: "test-secret", SessionTTL: time.Hour},
		Store:    storetest.Seeded(t),
		Sessions: auth.NewMemorySessionStore(),
	}))
	defer srv.Close()
	base := srv.URL + "/api"
	state := filepath.Join(t.TempDir(), "state.json")

	out, err := run(t, "--server", base, "--state", state, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")

	storage, err := client.OpenFileStorage(state)
	require.NoError(t, err)
	_, err = client.New(base, storage).Login(context.Background(), "admin@library.com", "password")
	require.NoError(t, err)

	out, err = run(t, "--server", base, "--state", state, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "admin@library.com")

	out, err = run(t, "--server", base, "--state", state, "books", "orwell")
	require.NoError(t, err)
	assert.Contains(t, out, "Animal Farm")
	assert.Contains(t, out, "2 of 2 books")

	out, err = run(t, "--server", base, "--state", state, "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Users: 3")

	_, err = run(t, "--server", base, "--state", state, "borrow", "abc")
	assert.Error(t, err)

	out, err = run(t, "--server", base, "--state", state, "review", "2", "5", "Still relevant")
	require.NoError(t, err)
	assert.Contains(t, out, "Review 1 saved")

	_, err = run(t, "--server", base, "--state", state, "review", "2", "9")
	assert.Error(t, err)

	out, err = run(t, "--server", base, "--state", state, "reviews", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Still relevant")
	assert.Contains(t, out, "Admin User")

	out, err = run(t, "--server", base, "--state", state, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")

	out, err = run(t, "--server", base, "--state", state, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")
}
