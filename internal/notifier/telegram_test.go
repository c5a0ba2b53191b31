package notifier

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBotAPI answers getMe and sendMessage like the Telegram Bot API.
func fakeBotAPI(t *testing.T, sent *atomic.Int32, text *string, sendStatus int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			_, _ = io.WriteString(w, `{"ok": true, "result": {"id": 1, "is_bot": true, "first_name": "sync", "username": "sync_bot"}}`)
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			sent.Add(1)
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "-100200", r.PostForm.Get("chat_id"))
			*text = r.PostForm.Get("text")
			if sendStatus != http.StatusOK {
				w.WriteHeader(sendStatus)
				_, _ = io.WriteString(w, `{"ok": false, "error_code": 400, "description": "Bad Request: chat not found"}`)
				return
			}
			_, _ = io.WriteString(w, `{"ok": true, "result": {"message_id": 7, "date": 1767614400, "chat": {"id": -100200, "type": "group"}}}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestTelegramNotifier_Notify(t *testing.T) {
	var sent atomic.Int32
	var text string
	server := fakeBotAPI(t, &sent, &text, http.StatusOK)

	n, err := NewTelegramNotifier("123:abc", -100200, WithTelegramEndpoint(server.URL+"/bot%s/%s", server.Client()))
	require.NoError(t, err)

	run := failedRun()
	require.NoError(t, n.Notify(context.Background(), run))
	require.NoError(t, n.Notify(context.Background(), run))

	assert.Equal(t, int32(2), sent.Load())
	assert.Equal(t, FormatAlert(run), text)
}

func TestTelegramNotifier_SendError(t *testing.T) {
	var sent atomic.Int32
	var text string
	server := fakeBotAPI(t, &sent, &text, http.StatusBadRequest)

	n, err := NewTelegramNotifier("123:abc", -100200, WithTelegramEndpoint(server.URL+"/bot%s/%s", server.Client()))
	require.NoError(t, err)

	err = n.Notify(context.Background(), failedRun())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestTelegramNotifier_CancelledContext(t *testing.T) {
	n, err := NewTelegramNotifier("123:abc", 42)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, n.Notify(ctx, failedRun()), context.Canceled)
}

func TestNewTelegramNotifier_Validation(t *testing.T) {
	_, err := NewTelegramNotifier("", 42)
	assert.Error(t, err)

	_, err = NewTelegramNotifier("123:abc", 0)
	assert.Error(t, err)
}
