package client_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"employee-directory/internal/client"
	"employee-directory/internal/metrics"
	"employee-directory/internal/models"
	"employee-directory/internal/repository/repositorytest"
	"employee-directory/internal/router"
	"employee-directory/internal/session"
	"employee-directory/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

// newBackend runs the real router on in-memory stores with one admin account.
func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	images, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	users := repositorytest.NewUsers()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = users.CreateUser(context.Background(), "Admin", "admin@example.com", string(hash))
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	r := gin.New()
	router.Setup(r, router.Deps{
		Employees: repositorytest.NewEmployees(),
		Users:     users,
		Images:    images,
		UploadDir: images.Dir(),
		Sessions:  session.NewManager("secret", time.Hour, false),
		DB:        okPinger{},
		Metrics:   metrics.NewMetrics(reg),
		Gatherer:  reg,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func loggedIn(t *testing.T, srv *httptest.Server) *client.Client {
	t.Helper()
	c, err := client.New(srv.URL)
	require.NoError(t, err)
	_, err = c.Login(context.Background(), "admin@example.com", "secret1")
	require.NoError(t, err)
	return c
}

func annPayload() client.Payload {
	return client.Payload{Values: url.Values{
		"name":        {"Ann"},
		"email":       {"ann@example.com"},
		"mobile":      {"9876543210"},
		"designation": {"HR"},
		"gender":      {"F"},
		"courses":     {"MCA"},
	}}
}

func TestClient_EmployeeLifecycle(t *testing.T) {
	srv := newBackend(t)
	c := loggedIn(t, srv)
	ctx := context.Background()

	created, err := c.Create(ctx, annPayload())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "EMP0001", created.EmployeeCode)
	assert.True(t, created.IsActive)

	list, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	updated, err := c.Update(ctx, created.ID, client.Payload{
		Values: url.Values{"name": {"Ann Lee"}},
		Image:  &models.ImageFile{Name: "ann.png", ContentType: "image/png", Content: []byte("png")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", updated.Name)
	assert.Equal(t, "ann@example.com", updated.Email)
	require.NotEmpty(t, updated.ImageURL)

	// the stored image is served back
	resp, err := http.Get(c.ImageURL(updated.ImageURL))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	toggled, err := c.ToggleStatus(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	got, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	xlsx, err := c.Export(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, xlsx)

	require.NoError(t, c.Delete(ctx, created.ID))
	_, err = c.Get(ctx, created.ID)
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestClient_Errors(t *testing.T) {
	srv := newBackend(t)
	ctx := context.Background()

	t.Run("unauthenticated", func(t *testing.T) {
		c, err := client.New(srv.URL)
		require.NoError(t, err)

		_, err = c.List(ctx)
		var reqErr *client.RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, http.StatusUnauthorized, reqErr.StatusCode)
		assert.Equal(t, "Not authenticated", reqErr.Message)
	})

	t.Run("server message is surfaced", func(t *testing.T) {
		c := loggedIn(t, srv)
		p := annPayload()
		p.Values.Set("email", "dup@example.com")
		_, err := c.Create(ctx, p)
		require.NoError(t, err)

		_, err = c.Create(ctx, p)
		var reqErr *client.RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, http.StatusConflict, reqErr.StatusCode)
		assert.Equal(t, "email already exists", reqErr.Message)
		assert.False(t, errors.Is(err, client.ErrNotFound))
	})

	t.Run("falls back to error field", func(t *testing.T) {
		fake := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"boom"}`))
		}))
		defer fake.Close()

		c, err := client.New(fake.URL)
		require.NoError(t, err)
		_, err = c.List(ctx)
		var reqErr *client.RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, "boom", reqErr.Message)
	})

	t.Run("transport failure has status 0", func(t *testing.T) {
		dead := httptest.NewServer(http.NotFoundHandler())
		dead.Close()

		c, err := client.New(dead.URL)
		require.NoError(t, err)
		_, err = c.List(ctx)
		var reqErr *client.RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Zero(t, reqErr.StatusCode)
	})
}

func TestClient_New(t *testing.T) {
	_, err := client.New("localhost:5000")
	assert.Error(t, err)

	c, err := client.New("http://localhost:5000/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/uploads/a.png", c.ImageURL("/uploads/a.png"))
	assert.Equal(t, "https://cdn.example.com/a.png", c.ImageURL("https://cdn.example.com/a.png"))
	assert.Empty(t, c.ImageURL(""))
}

func TestClient_WithHTTPClient(t *testing.T) {
	srv := newBackend(t)
	own := &http.Client{Timeout: time.Minute}

	c, err := client.New(srv.URL, client.WithHTTPClient(own))
	require.NoError(t, err)
	_, err = c.Login(context.Background(), "admin@example.com", "secret1")
	require.NoError(t, err)
	_, err = c.List(context.Background())
	require.NoError(t, err, "session kept in the client's own jar")

	assert.Nil(t, own.Jar, "caller's client is not modified")
	assert.Equal(t, time.Minute, own.Timeout)

	_, err = client.New(srv.URL, client.WithHTTPClient(nil))
	assert.Error(t, err)
}

func TestClient_WithTimeoutBeforeHTTPClient(t *testing.T) {
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(slow.Close)
	t.Cleanup(func() { close(release) })

	c, err := client.New(slow.URL,
		client.WithTimeout(50*time.Millisecond),
		client.WithHTTPClient(&http.Client{}))
	require.NoError(t, err)

	_, err = c.List(context.Background())

	var reqErr *client.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Zero(t, reqErr.StatusCode)
}
