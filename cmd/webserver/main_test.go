package main

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"dailyquiz"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClient struct {
	t      *testing.T
	base   string
	client *http.Client
}

type testEnv struct {
	*testClient
	store   dailyquiz.Store
	service *dailyquiz.QuizService
	server  *Server
}

func newTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := dailyquiz.OpenStore(context.Background(), dailyquiz.StoreConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "quiz.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	service := dailyquiz.NewQuizService(store, nil)
	server := NewServer(service, newCookieStore([]byte("test-secret-key-0123456789abcdef"), false))
	server.now = func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC) }

	ts := httptest.NewServer(server.Routes())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testEnv{
		testClient: &testClient{t: t, base: ts.URL, client: &http.Client{Jar: jar}},
		store:      store,
		service:    service,
		server:     server,
	}
}

func (c *testClient) get(path string) (int, string) {
	resp, err := c.client.Get(c.base + path)
	require.NoError(c.t, err)
	return readBody(c.t, resp)
}

func (c *testClient) post(path string, form url.Values) (int, string) {
	resp, err := c.client.PostForm(c.base+path, form)
	require.NoError(c.t, err)
	return readBody(c.t, resp)
}

func readBody(t *testing.T, resp *http.Response) (int, string) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestQuizWalkthrough(t *testing.T) {
	c := newTestServer(t)
	store := c.store

	status, body := c.get("/")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Q1: What is the next number in the sequence")
	assert.Contains(t, body, `name="choice"`)

	// fallback answers in order
	answers := []string{"C", "B", "A", "B"}
	for i, choice := range answers {
		status, body = c.post("/answer", url.Values{"choice": {choice}})
		require.Equal(t, http.StatusOK, status)
		if i == 2 {
			assert.Contains(t, body, "Incorrect. The correct answer is B.")
		} else {
			assert.Contains(t, body, "Correct! Well done.")
		}
		assert.Contains(t, body, "Next Question")

		status, body = c.post("/next", nil)
		require.Equal(t, http.StatusOK, status)
	}

	assert.Contains(t, body, "Quiz Completed!")
	assert.Contains(t, body, "Your Score: 3/4")

	batch, err := store.GetQuestions(context.Background(), "2024-01-01")
	require.NoError(t, err)
	require.Len(t, batch, 4)
	recorded, err := store.GetAnswers(context.Background(), batch[2].ID)
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	assert.Equal(t, "A", recorded[0].Choice)
	assert.False(t, recorded[0].Correct)
}

func TestAnswerWithoutChoiceFlashes(t *testing.T) {
	c := newTestServer(t)

	status, body := c.post("/answer", url.Values{})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Please select an option before submitting!")
	assert.Contains(t, body, "Q1:")

	status, body = c.post("/answer", url.Values{"choice": {"Z"}})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Please select one of the listed options.")
	assert.Contains(t, body, "Submit Answer")
}

func TestRegenerateResetsSession(t *testing.T) {
	c := newTestServer(t)

	c.get("/")
	c.post("/answer", url.Values{"choice": {"C"}})
	c.post("/next", nil)

	status, body := c.post("/regenerate", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Questions regenerated and saved!")
	assert.Contains(t, body, "Q1:")
}

func TestAPIQuestions(t *testing.T) {
	c := newTestServer(t)

	status, body := c.get("/api/questions?date=2024-02-02")
	require.Equal(t, http.StatusOK, status)

	var batch []dailyquiz.Question
	require.NoError(t, json.Unmarshal([]byte(body), &batch))
	require.Len(t, batch, 4)
	assert.Equal(t, []string{"A", "B", "C", "D"}, batch[0].Options.Keys())

	status, _ = c.get("/api/questions?date=yesterday")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestMetricsEndpoint(t *testing.T) {
	c := newTestServer(t)
	c.get("/")

	status, body := c.get("/metrics")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "dailyquiz_batches_total")
}

func TestSessionRestartsAfterRegenerationElsewhere(t *testing.T) {
	c := newTestServer(t)
	ctx := context.Background()

	c.get("/")
	c.post("/answer", url.Values{"choice": {"C"}})
	c.post("/next", nil)

	// same size batch, new ids
	_, err := c.service.Regenerate(ctx, "2024-01-01")
	require.NoError(t, err)

	status, body := c.get("/")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Q1: What is the next number in the sequence")
	assert.Contains(t, body, "Submit Answer")

	for _, choice := range []string{"C", "B", "B", "B"} {
		c.post("/answer", url.Values{"choice": {choice}})
		_, body = c.post("/next", nil)
	}
	assert.Contains(t, body, "Your Score: 4/4")
}

func TestCookieStoreOptions(t *testing.T) {
	store := newCookieStore([]byte("test-secret-key-0123456789abcdef"), false)
	assert.False(t, store.Options.Secure)
	assert.True(t, store.Options.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, store.Options.SameSite)
	assert.Equal(t, "/", store.Options.Path)

	assert.True(t, newCookieStore([]byte("test-secret-key-0123456789abcdef"), true).Options.Secure)
}

func TestRenderErrorStatus(t *testing.T) {
	c := newTestServer(t)

	rec := httptest.NewRecorder()
	c.server.renderError(rec, dailyquiz.ErrNoQuestions)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cannot start quiz.")
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestRenderBrokenTemplateWritesNoPartialPage(t *testing.T) {
	c := newTestServer(t)
	c.server.templates["error"] = template.Must(template.New("error").Parse(
		`{{define "base.html"}}partial page {{.Message.Missing}}{{end}}`))

	rec := httptest.NewRecorder()
	c.server.renderError(rec, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Template error")
	assert.NotContains(t, rec.Body.String(), "partial page")
}
