package rpc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llmanim/internal/gateway/service/editor"
	"llmanim/internal/generation"
	"llmanim/internal/llm"
	"llmanim/internal/version"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := version.NewStore()
	svc := editor.New(store, generation.NewLLM(llm.NewFakeClient(), nil))

	mux := http.NewServeMux()
	mux.Handle(NewVersionHandler(svc, nil).Handler())
	mux.Handle("/ws/versions", NewWatchHandler(store, nil))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func call[Req, Res any](t *testing.T, srv *httptest.Server, name string, req *Req) (*Res, error) {
	t.Helper()
	c := connect.NewClient[Req, Res](srv.Client(), srv.URL+ServicePath+name, connect.WithCodec(jsonCodec{}))
	resp, err := c.CallUnary(context.Background(), connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func TestCollectionProcedures(t *testing.T) {
	srv := newTestServer(t)

	created, err := call[CreateRequest, VersionResponse](t, srv, "Create", &CreateRequest{Name: "v1"})
	require.NoError(t, err)
	assert.Equal(t, "v1", created.Version.ID)

	_, err = call[CreateRequest, VersionResponse](t, srv, "Create", &CreateRequest{Name: "v1"})
	assert.Equal(t, connect.CodeAlreadyExists, connect.CodeOf(err))

	cp, err := call[IDRequest, VersionResponse](t, srv, "Copy", &IDRequest{ID: "v1"})
	require.NoError(t, err)
	assert.Equal(t, "v1-copy", cp.Version.ID)

	list, err := call[Empty, ListResponse](t, srv, "List", &Empty{})
	require.NoError(t, err)
	assert.Len(t, list.Versions, 2)
	assert.Equal(t, "v1-copy", list.CurrentID)

	_, err = call[IDRequest, Empty](t, srv, "Delete", &IDRequest{ID: "v1-copy"})
	require.NoError(t, err)
	list, err = call[Empty, ListResponse](t, srv, "List", &Empty{})
	require.NoError(t, err)
	assert.Empty(t, list.CurrentID)

	_, err = call[IDRequest, VersionResponse](t, srv, "Get", &IDRequest{ID: "gone"})
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	_, err = call[IDRequest, Empty](t, srv, "Switch", &IDRequest{})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestSaveProcedure(t *testing.T) {
	srv := newTestServer(t)

	created, err := call[CreateRequest, VersionResponse](t, srv, "Create", &CreateRequest{})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(created.Version.ID, version.UnsavedPrefix))

	_, err = call[SaveRequest, VersionResponse](t, srv, "Save", &SaveRequest{ID: created.Version.ID})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	saved, err := call[SaveRequest, VersionResponse](t, srv, "Save", &SaveRequest{ID: created.Version.ID, Name: "ocean"})
	require.NoError(t, err)
	assert.Equal(t, "ocean", saved.Version.ID)
}

func TestEditorProcedures(t *testing.T) {
	srv := newTestServer(t)

	_, err := call[CreateRequest, VersionResponse](t, srv, "Create", &CreateRequest{Name: "v1"})
	require.NoError(t, err)
	_, err = call[EditRequest, VersionResponse](t, srv, "Commit", &EditRequest{ID: "v1", Text: "A fish swimming in the ocean"})
	require.NoError(t, err)

	initRes, err := call[IDRequest, VersionResponse](t, srv, "Initialize", &IDRequest{ID: "v1"})
	require.NoError(t, err)
	assert.Contains(t, initRes.Version.Code.HTML, "<svg")
	assert.Contains(t, initRes.Version.Description, "[fish]{")

	_, err = call[SelectWordRequest, VersionResponse](t, srv, "SelectWord", &SelectWordRequest{ID: "v1", Word: "fish"})
	require.NoError(t, err)
	_, err = call[SetHighlightRequest, VersionResponse](t, srv, "SetHighlight", &SetHighlightRequest{ID: "v1", Enabled: true})
	require.NoError(t, err)
	lines, err := call[IDRequest, LinesResponse](t, srv, "Lines", &IDRequest{ID: "v1"})
	require.NoError(t, err)
	assert.NotEmpty(t, lines.Lines)

	rendered, err := call[IDRequest, RenderResponse](t, srv, "Render", &IDRequest{ID: "v1"})
	require.NoError(t, err)
	assert.NotContains(t, rendered.Display.Plain, "{")
	assert.Len(t, rendered.Display.Hidden, 2)

	committed, err := call[EditRequest, VersionResponse](t, srv, "Commit", &EditRequest{ID: "v1", HTML: rendered.Display.HTML})
	require.NoError(t, err)
	assert.Equal(t, initRes.Version.Description, committed.Version.Description)

	undo, err := call[IDRequest, UndoResponse](t, srv, "Undo", &IDRequest{ID: "v1"})
	require.NoError(t, err)
	assert.True(t, undo.Restored)
	assert.Equal(t, "A fish swimming in the ocean", undo.Version.Description)

	ext, err := call[IDRequest, ExtendResponse](t, srv, "Extend", &IDRequest{ID: "v1"})
	require.NoError(t, err)
	assert.Len(t, ext.Versions, 4)
}

func TestSegmentWithoutCode(t *testing.T) {
	srv := newTestServer(t)
	_, err := call[CreateRequest, VersionResponse](t, srv, "Create", &CreateRequest{Name: "v1"})
	require.NoError(t, err)

	_, err = call[IDRequest, VersionResponse](t, srv, "Segment", &IDRequest{ID: "v1"})
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))
}

func TestWatchStreamsEvents(t *testing.T) {
	srv := newTestServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/versions"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	readUntil := func(typ string) watchWSOutbound {
		for {
			var out watchWSOutbound
			require.NoError(t, conn.ReadJSON(&out))
			if out.Type == typ {
				return out
			}
		}
	}
	readUntil("subscribed")

	_, err = call[CreateRequest, VersionResponse](t, srv, "Create", &CreateRequest{Name: "v1"})
	require.NoError(t, err)
	evt := readUntil(string(version.EventCreated))
	assert.Equal(t, "v1", evt.VersionID)

	require.NoError(t, conn.WriteJSON(watchWSInbound{Type: "ping"}))
	readUntil("pong")
}
