package debugserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goofansu/tankgame/internal/debugcmd"
	"github.com/goofansu/tankgame/internal/dump"
)

type fakeState struct {
	st dump.State
	ok bool
}

func (f fakeState) PublishedState() (dump.State, bool) { return f.st, f.ok }

func newTestServer(t *testing.T, opts ...Option) (*Server, *debugcmd.Queue) {
	t.Helper()
	log, _ := test.NewNullLogger()
	q := debugcmd.NewQueue()
	return New(q, append([]Option{WithLogger(log)}, opts...)...), q
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestInject(t *testing.T) {
	s, q := newTestServer(t)

	rec := do(s, http.MethodPost, "/debug/inject", "teleport 1 2\nquit")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	text, ok := q.Poll()
	require.True(t, ok)
	assert.Equal(t, "teleport 1 2\nquit", text)

	rec = do(s, http.MethodPost, "/debug/inject", "  \n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, q.Len())
}

func TestScreenshotAndQuit(t *testing.T) {
	s, q := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, do(s, http.MethodPost, "/debug/screenshot", "").Code)
	assert.Equal(t, http.StatusAccepted, do(s, http.MethodPost, "/debug/screenshot?path=/tmp/a.png", "").Code)
	assert.Equal(t, http.StatusAccepted, do(s, http.MethodPost, "/debug/quit", "").Code)

	text, ok := q.Poll()
	require.True(t, ok)
	assert.Equal(t, "screenshot /tmp/a.png\nquit", text)
	assert.Equal(t, []debugcmd.Adhoc{
		{Kind: debugcmd.AdhocScreenshot, Path: "/tmp/a.png"},
		{Kind: debugcmd.AdhocQuit},
	}, debugcmd.ParseAdhoc(text), "queued text must work with ad-hoc mode too")
}

func TestState(t *testing.T) {
	s, _ := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/debug/state", "").Code)

	s, _ = newTestServer(t, WithState(fakeState{}))
	assert.Equal(t, http.StatusServiceUnavailable, do(s, http.MethodGet, "/debug/state", "").Code)

	s, _ = newTestServer(t, WithState(fakeState{st: dump.State{Frame: 7}, ok: true}))
	rec := do(s, http.MethodGet, "/debug/state", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# Tank Game State Dump\nframe: 7\n\n", rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
}

func TestWebsocketQueuesMessages(t *testing.T) {
	s, q := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/debug/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
		resp.Body.Close()
	})

	for i, msg := range []string{"god on", "give mine"} {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
		_, reply, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, []string{"queued 1", "queued 2"}[i], string(reply))
	}

	text, ok := q.Poll()
	require.True(t, ok)
	assert.Equal(t, "god on\ngive mine", text)
}
