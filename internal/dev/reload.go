package dev

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/nextgo-dev/nextgo/internal/errors"
)

// Event kinds pushed to connected browsers.
const (
	EventReload = "reload"
	EventCSS    = "css"
	EventError  = "error"
	EventClear  = "clear"
)

// ReloadEvent is the wire format of one reload notification.
type ReloadEvent struct {
	Kind  string      `json:"kind"`
	Path  string      `json:"path,omitempty"`
	Error *BuildError `json:"error,omitempty"`
}

// BuildError is the structured payload behind an error event. The
// client overlay renders its fields directly.
type BuildError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// reloadClient is one connected browser. Events queue on send; a slow
// client that fills its queue is dropped rather than blocking the rest.
type reloadClient struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *reloadClient) writeLoop() {
	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			break
		}
	}
	c.conn.Close()
}

// ReloadServer fans reload notifications out to connected browsers. It
// remembers the last build error so a browser opened after a failed
// build still shows the overlay.
type ReloadServer struct {
	mu       sync.Mutex
	clients  map[*reloadClient]struct{}
	lastErr  *BuildError
	closed   bool
	upgrader websocket.Upgrader
}

// NewReloadServer creates a reload server with no connected clients.
func NewReloadServer() *ReloadServer {
	return &ReloadServer{
		clients: make(map[*reloadClient]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Dev-only endpoint, any origin may connect.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleWebSocket upgrades the connection and serves it until the
// browser disconnects.
func (r *ReloadServer) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}

	c := &reloadClient{conn: conn, send: make(chan []byte, 8)}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		conn.Close()
		return
	}
	r.clients[c] = struct{}{}
	if r.lastErr != nil {
		if data, err := json.Marshal(ReloadEvent{Kind: EventError, Error: r.lastErr}); err == nil {
			c.send <- data
		}
	}
	r.mu.Unlock()

	go c.writeLoop()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	r.mu.Lock()
	r.dropLocked(c)
	r.mu.Unlock()
}

// dropLocked unregisters a client and closes its queue. The caller
// holds the lock; membership guards against a double close.
func (r *ReloadServer) dropLocked(c *reloadClient) {
	if _, ok := r.clients[c]; ok {
		delete(r.clients, c)
		close(c.send)
	}
}

// NotifyReload tells every client to reload the page.
func (r *ReloadServer) NotifyReload() {
	r.broadcast(ReloadEvent{Kind: EventReload})
}

// NotifyCSS tells every client to refresh stylesheets without a full
// reload.
func (r *ReloadServer) NotifyCSS(path string) {
	r.broadcast(ReloadEvent{Kind: EventCSS, Path: path})
}

// NotifyError shows the error overlay on every client and records the
// error for clients that connect later.
func (r *ReloadServer) NotifyError(err error) {
	if err == nil {
		return
	}

	be := &BuildError{Message: err.Error()}
	var ne *errors.NextgoError
	if stderrors.As(err, &ne) {
		be = &BuildError{Code: ne.Code, Message: ne.Message, Detail: ne.Detail}
	}

	r.mu.Lock()
	r.lastErr = be
	r.mu.Unlock()

	r.broadcast(ReloadEvent{Kind: EventError, Error: be})
}

// ClearError removes the error overlay and forgets the recorded error.
func (r *ReloadServer) ClearError() {
	r.mu.Lock()
	r.lastErr = nil
	r.mu.Unlock()

	r.broadcast(ReloadEvent{Kind: EventClear})
}

// broadcast queues an event on every client.
func (r *ReloadServer) broadcast(ev ReloadEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.clients {
		select {
		case c.send <- data:
		default:
			r.dropLocked(c)
		}
	}
}

// ClientCount returns the number of connected clients.
func (r *ReloadServer) ClientCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Close disconnects every client and refuses new connections.
func (r *ReloadServer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	for c := range r.clients {
		r.dropLocked(c)
	}
}

// ReloadClientScript is injected into HTML pages in development mode.
// It connects to /_nextgo/reload and reacts to the events above.
const ReloadClientScript = `
<script>
(function () {
	'use strict';

	var OVERLAY_ID = 'nextgo-overlay';
	var retry = 500;

	var handlers = {
		reload: function () { location.reload(); },
		css: refreshStylesheets,
		error: function (ev) { showOverlay(ev.error || {}); },
		clear: removeOverlay
	};

	function connect() {
		var scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
		var ws = new WebSocket(scheme + location.host + '/_nextgo/reload');

		ws.addEventListener('open', function () {
			retry = 500;
		});

		ws.addEventListener('message', function (e) {
			var ev;
			try { ev = JSON.parse(e.data); } catch (err) { return; }
			var handle = handlers[ev.kind];
			if (handle) { handle(ev); }
		});

		ws.addEventListener('close', function () {
			setTimeout(connect, retry);
			retry = Math.min(retry + 500, 5000);
		});
	}

	function refreshStylesheets() {
		var links = document.querySelectorAll('link[rel="stylesheet"]');
		for (var i = 0; i < links.length; i++) {
			var url = new URL(links[i].href);
			url.searchParams.set('v', Date.now());
			links[i].href = url.toString();
		}
	}

	function showOverlay(err) {
		removeOverlay();

		var host = document.createElement('div');
		host.id = OVERLAY_ID;
		host.style.cssText = 'position:fixed;inset:0;z-index:2147483647;' +
			'background:rgba(12,12,12,0.95);color:#eee;font-family:monospace;' +
			'padding:2rem;overflow:auto;';

		var head = document.createElement('div');
		head.style.cssText = 'color:#ff6b6b;font-size:1.2rem;margin-bottom:1rem;';
		head.textContent = (err.code ? err.code + ': ' : '') + (err.message || 'Build failed');
		host.appendChild(head);

		if (err.detail) {
			var detail = document.createElement('pre');
			detail.style.cssText = 'white-space:pre-wrap;background:#1c1c1c;' +
				'padding:1rem;border-radius:6px;';
			detail.textContent = err.detail;
			host.appendChild(detail);
		}

		var note = document.createElement('div');
		note.style.cssText = 'color:#888;margin-top:1rem;';
		note.textContent = 'Fix the error and save; the overlay clears on the next good build.';
		host.appendChild(note);

		document.body.appendChild(host);
	}

	function removeOverlay() {
		var host = document.getElementById(OVERLAY_ID);
		if (host) { host.remove(); }
	}

	if (document.readyState === 'loading') {
		document.addEventListener('DOMContentLoaded', connect);
	} else {
		connect();
	}
})();
</script>
`
