package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/portfolio-backend/models"
)

type capturedEmail struct {
	auth    string
	payload ResendEmailRequest
}

func newResendServer(t *testing.T, status int, body string) (*httptest.Server, <-chan capturedEmail) {
	t.Helper()
	emails := make(chan capturedEmail, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload ResendEmailRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		emails <- capturedEmail{auth: r.Header.Get("Authorization"), payload: payload}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, emails
}

func TestSendEmail(t *testing.T) {
	srv, emails := newResendServer(t, http.StatusOK, `{"id":"email-1"}`)
	n := NewNotifier("re_test", "site@example.com", []string{"owner@example.com"}, WithEndpoint(srv.URL))

	err := n.SendEmail(context.Background(), "hello", "<p>hi</p>")
	require.NoError(t, err)

	email := <-emails
	assert.Equal(t, "Bearer re_test", email.auth)
	assert.Equal(t, "site@example.com", email.payload.From)
	assert.Equal(t, []string{"owner@example.com"}, email.payload.To)
	assert.Equal(t, "hello", email.payload.Subject)
	assert.Equal(t, "<p>hi</p>", email.payload.Html)
}

func TestSendEmailAPIError(t *testing.T) {
	srv, _ := newResendServer(t, http.StatusUnprocessableEntity, `{"message":"invalid from address"}`)
	n := NewNotifier("re_test", "bad", []string{"owner@example.com"}, WithEndpoint(srv.URL))

	err := n.SendEmail(context.Background(), "hello", "<p>hi</p>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 422")
	assert.Contains(t, err.Error(), "invalid from address")
}

func TestSendEmailRequiresRecipients(t *testing.T) {
	n := NewNotifier("re_test", "site@example.com", nil)
	assert.Error(t, n.SendEmail(context.Background(), "hello", "body"))
}

func TestProjectCreatedSendsInBackground(t *testing.T) {
	srv, emails := newResendServer(t, http.StatusOK, `{"id":"email-2"}`)
	n := NewNotifier("re_test", "site@example.com", []string{"owner@example.com"},
		WithEndpoint(srv.URL), WithHTTPClient(srv.Client()))

	n.ProjectCreated(models.Project{
		ID:           "p1",
		Title:        "Proxy <v2>",
		Description:  "TLS proxy",
		Technologies: []string{"Go"},
		GithubLink:   "https://github.com/x/proxy",
	})

	select {
	case email := <-emails:
		assert.Equal(t, `Portfolio: project "Proxy <v2>" added`, email.payload.Subject)
		assert.Contains(t, email.payload.Html, "Proxy &lt;v2&gt;")
		assert.Contains(t, email.payload.Html, "Technologies: Go")
	case <-time.After(5 * time.Second):
		t.Fatal("notification was not sent")
	}
}

func TestProjectDeletedMentionsVideoFailure(t *testing.T) {
	srv, emails := newResendServer(t, http.StatusOK, `{"id":"email-3"}`)
	n := NewNotifier("re_test", "site@example.com", []string{"owner@example.com"}, WithEndpoint(srv.URL))

	n.ProjectDeleted(models.DeleteReceipt{ID: "p1", VideoError: "permission denied"})

	select {
	case email := <-emails:
		assert.Equal(t, "Portfolio: project p1 deleted", email.payload.Subject)
		assert.Contains(t, email.payload.Html, "permission denied")
	case <-time.After(5 * time.Second):
		t.Fatal("notification was not sent")
	}
}

func TestNilNotifierIsSilent(t *testing.T) {
	var n *Notifier
	assert.NotPanics(t, func() {
		n.ProjectCreated(models.Project{ID: "p1"})
		n.ProjectDeleted(models.DeleteReceipt{ID: "p1"})
	})
}
