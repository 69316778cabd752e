// Package web serves the browser front end. The page itself is a thin
// shell: it opens a websocket, forwards user events in, and swaps in
// the HTML patches the client engine pushes out. One engine instance
// runs per connection.
package web

import (
	"context"
	_ "embed"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"dailydash/internal/client/engine"
	"dailydash/internal/client/gateway"
	"dailydash/internal/client/localstore"
	"dailydash/internal/client/state"
	"dailydash/internal/domain"
)

//go:embed index.html
var indexHTML []byte

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The API already gates cross-origin access; the socket is served
	// same-origin from this handler.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler serves the live view.
type Handler struct {
	apiBase string
	local   *localstore.Store
	log     *slog.Logger
}

// New creates a handler whose engines talk to the given API base URL.
func New(apiBase string, local *localstore.Store, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{apiBase: apiBase, local: local, log: log}
}

// Register mounts the page and websocket routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.serveIndex)
	r.Get("/ws", h.serveWS)
}

func (h *Handler) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// clientEvent is a user interaction forwarded by the page.
type clientEvent struct {
	Type     string `json:"type"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Name     string `json:"name,omitempty"`
	Filter   string `json:"filter,omitempty"`
	Text     string `json:"text,omitempty"`
	Link     string `json:"link,omitempty"`
	Category string `json:"category,omitempty"`
}

// serverMsg is a message pushed to the page: an HTML patch or a toast.
type serverMsg struct {
	Type     string `json:"type"`
	Scope    string `json:"scope,omitempty"`
	HTML     string `json:"html,omitempty"`
	Message  string `json:"message,omitempty"`
	Undoable bool   `json:"undoable,omitempty"`
}

func (h *Handler) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// Gorilla connections allow one concurrent writer; renders and
	// notices both push, so writes share a mutex.
	var writeMu sync.Mutex
	send := func(msg serverMsg) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(msg); err != nil {
			h.log.Debug("websocket write failed", "error", err)
		}
	}

	api, err := gateway.New(h.apiBase, h.log)
	if err != nil {
		h.log.Error("gateway setup failed", "error", err)
		return
	}

	eng := engine.New(engine.Options{
		API:    api,
		Logger: h.log,
		Local:  h.local,
		Notifier: state.NotifyFunc(func(n state.Notification) {
			send(serverMsg{Type: "notice", Message: n.Message, Undoable: n.Undoable})
		}),
		OnRender: func(scope engine.Scope, html string) {
			send(serverMsg{Type: "patch", Scope: string(scope), HTML: html})
		},
	})

	ctx := r.Context()
	eng.Start(ctx)

	for {
		var ev clientEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("websocket read failed", "error", err)
			}
			return
		}
		h.dispatch(ctx, eng, ev)
	}
}

func (h *Handler) dispatch(ctx context.Context, eng *engine.Engine, ev clientEvent) {
	switch ev.Type {
	case "login":
		eng.Login(ctx, ev.Email, ev.Password)
	case "signup":
		eng.Signup(ctx, ev.Name, ev.Email, ev.Password)
	case "logout":
		eng.Logout(ctx)
	case "filter":
		eng.SetFilter(ctx, domain.Filter(ev.Filter))
	case "search":
		eng.SearchInput(ev.Text)
	case "toggle-bookmark":
		eng.ToggleBookmark(ctx, ev.Link)
	case "undo":
		eng.UndoBookmark(ctx)
	case "toggle-pref":
		eng.TogglePreference(ev.Category)
	case "save-prefs":
		eng.SavePreferences(ctx)
	case "open-settings":
		eng.OpenSettings()
	case "close-settings":
		eng.CloseSettings(ctx)
	case "toggle-theme":
		eng.ToggleTheme()
	default:
		h.log.Debug("unknown client event", "type", ev.Type)
	}
}
