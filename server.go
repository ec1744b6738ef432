package main

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/oszuidwest/zwfm-player/internal/archive"
	"github.com/oszuidwest/zwfm-player/internal/config"
	"github.com/oszuidwest/zwfm-player/internal/playback"
	"github.com/oszuidwest/zwfm-player/internal/player"
	"github.com/oszuidwest/zwfm-player/internal/server"
	"github.com/oszuidwest/zwfm-player/internal/types"
)

var loginTmpl = template.Must(template.New("login").Parse(loginHTML))
var indexTmpl = template.Must(template.New("index").Parse(indexHTML))

type loginData struct {
	Error     bool
	CSRFToken string
	Version   string
	Year      int
}

type indexData struct {
	Version string
	Year    int
}

// Server is an HTTP server that provides the web interface for the player.
type Server struct {
	config            *config.Config
	player            *player.Player
	sessions          *server.SessionManager
	commands          *server.CommandHandler
	version           *VersionChecker
	playbackAvailable bool

	// reports fans monitor window reports out to connected WebSocket clients.
	reports *reportBroadcast
}

// NewServer returns a new Server wired to the given player and archiver.
func NewServer(cfg *config.Config, p *player.Player, a *archive.Archiver, playbackAvailable bool) *Server {
	s := &Server{
		config:            cfg,
		player:            p,
		sessions:          server.NewSessionManager(),
		commands:          server.NewCommandHandler(cfg, p, a, playbackAvailable),
		version:           NewVersionChecker(),
		playbackAvailable: playbackAvailable,
		reports:           newReportBroadcast(),
	}

	// Window reports arrive once per monitor tick; push them to clients as
	// they happen instead of polling.
	p.SetReportSink(s.reports.publish)

	return s
}

// handleWebSocket handles bidirectional WebSocket communication for real-time updates.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := server.UpgradeConnection(w, r)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}

	// Create buffered send channel for thread-safe writes.
	// Only the writer goroutine writes to the connection, preventing race conditions.
	send := make(chan any, 16)
	done := make(chan struct{})
	statusUpdate := make(chan struct{}, 1)

	// Writer goroutine - sole writer to the connection
	go s.runWebSocketWriter(conn, send)

	// Reader goroutine - handles incoming commands
	go s.runWebSocketReader(conn, send, done, statusUpdate)

	s.runWebSocketEventLoop(send, done, statusUpdate)
}

// runWebSocketWriter writes messages from the send channel to the connection.
func (s *Server) runWebSocketWriter(conn server.WebSocketConn, send <-chan any) {
	defer func() {
		if err := conn.Close(); err != nil {
			slog.Debug("WebSocket close error", "error", err)
		}
	}()
	for msg := range send {
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// runWebSocketReader reads commands from the connection and dispatches them.
func (s *Server) runWebSocketReader(conn server.WebSocketConn, send chan<- any, done, statusUpdate chan<- struct{}) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in WebSocket reader", "panic", r)
		}
		close(done)
	}()

	for {
		var cmd server.WSCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			return
		}
		s.commands.Handle(cmd, send, func() {
			select {
			case statusUpdate <- struct{}{}:
			default:
			}
		})
	}
}

// runWebSocketEventLoop forwards window reports and periodic status updates.
func (s *Server) runWebSocketEventLoop(send chan any, done, statusUpdate <-chan struct{}) {
	reports := s.reports.subscribe()
	defer s.reports.unsubscribe(reports)

	statusTicker := time.NewTicker(3000 * time.Millisecond) // Status updates every 3s
	defer statusTicker.Stop()

	// trySend attempts to send a message, returning false if done is closed
	trySend := func(msg any) bool {
		select {
		case send <- msg:
			return true
		case <-done:
			return false
		}
	}

	// Send initial status
	if !trySend(s.buildWSStatus()) {
		close(send)
		return
	}

	for {
		select {
		case <-done:
			close(send)
			return
		case <-statusUpdate:
			if !trySend(s.buildWSStatus()) {
				close(send)
				return
			}
		case report := <-reports:
			if !trySend(types.WSLevelsResponse{Type: "levels", Report: report}) {
				close(send)
				return
			}
		case <-statusTicker.C:
			if !trySend(s.buildWSStatus()) {
				close(send)
				return
			}
		}
	}
}

// buildWSStatus returns the current WebSocket status response.
func (s *Server) buildWSStatus() types.WSStatusResponse {
	cfg := s.config.Snapshot()

	return types.WSStatusResponse{
		Type:            "status",
		PlayerAvailable: s.playbackAvailable,
		Player:          s.player.Status(),
		Devices:         playback.Devices(),
		QuietThreshold:  cfg.QuietThreshold,
		QuietDurationMs: cfg.QuietDurationMs,
		QuietRecoveryMs: cfg.QuietRecoveryMs,
		QuietWebhook:    cfg.WebhookURL,
		QuietLogPath:    cfg.LogPath,
		GraphTenantID:   cfg.GraphTenantID,
		GraphClientID:   cfg.GraphClientID,
		GraphFrom:       cfg.GraphFromAddress,
		GraphRecipients: cfg.GraphRecipients,

		GraphSecretExpiry: s.player.GraphSecretExpiry(),

		ZabbixServer: cfg.ZabbixServer,
		ZabbixPort:   cfg.ZabbixPort,
		ZabbixHost:   cfg.ZabbixHost,
		ZabbixKey:    cfg.ZabbixKey,

		Archive: types.ArchiveInfo{
			Enabled:       cfg.ArchiveEnabled,
			Bucket:        cfg.ArchiveBucket,
			Endpoint:      cfg.ArchiveEndpoint,
			RetentionDays: cfg.ArchiveRetentionDays,
		},
		Settings: types.WSSettings{
			Device:   cfg.Device,
			TickMs:   cfg.TickMs,
			Platform: runtime.GOOS,
		},
		Version: s.version.Info(),
	}
}

// SetupRoutes returns an [http.Handler] configured with all application routes.
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()
	auth := s.sessions.AuthMiddleware()

	// Public routes (no auth required)
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)

	// Public static assets (needed for login page styling)
	mux.HandleFunc("/style.css", s.handlePublicStatic)
	mux.HandleFunc("/favicon.svg", s.handlePublicStatic)

	// Protected routes
	mux.HandleFunc("/ws", auth(s.handleWebSocket))
	mux.HandleFunc("/", auth(s.handleStatic))

	return securityHeaders(mux)
}

// securityHeaders returns middleware that wraps handlers with security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// handlePublicStatic handles requests for static files without authentication.
func (s *Server) handlePublicStatic(w http.ResponseWriter, r *http.Request) {
	if !serveStaticFile(w, r.URL.Path) {
		http.NotFound(w, r)
	}
}

// serveStaticFile serves a static file by path and reports whether it was found.
func serveStaticFile(w http.ResponseWriter, path string) bool {
	file, ok := staticFiles[path]
	if !ok {
		return false
	}
	w.Header().Set("Content-Type", file.contentType)
	if _, err := w.Write([]byte(file.content)); err != nil {
		slog.Error("failed to write static file", "file", file.name, "error", err)
	}
	return true
}

// handleLogin handles login page display and form submission.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("player_session"); err == nil {
		if s.sessions.Validate(cookie.Value) {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
	}

	cfg := s.config.Snapshot()
	data := loginData{
		Version:   Version,
		Year:      time.Now().Year(),
		CSRFToken: s.sessions.CreateCSRFToken(),
	}

	if r.Method == http.MethodPost {
		csrfToken := r.FormValue("csrf_token")
		if !s.sessions.ValidateCSRFToken(csrfToken) {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		username := r.FormValue("username")
		password := r.FormValue("password")

		if s.sessions.Login(w, r, username, password, cfg.WebUser, cfg.WebPassword) {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}

		data.Error = true
		data.CSRFToken = s.sessions.CreateCSRFToken() // New token for retry
	}

	w.Header().Set("Content-Type", "text/html")
	if err := loginTmpl.Execute(w, data); err != nil {
		slog.Error("failed to render login page", "error", err)
	}
}

// handleLogout handles user logout requests.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Logout(w, r)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// staticFile is an embedded static file with content type and data.
type staticFile struct {
	contentType string
	content     string
	name        string
}

// staticFiles is a map from URL paths to static file definitions.
var staticFiles = map[string]staticFile{
	"/style.css": {
		contentType: "text/css",
		content:     styleCSS,
		name:        "style.css",
	},
	"/app.js": {
		contentType: "application/javascript",
		content:     appJS,
		name:        "app.js",
	},
	"/favicon.svg": {
		contentType: "image/svg+xml",
		content:     faviconSVG,
		name:        "favicon.svg",
	},
}

// handleStatic handles requests for embedded static web interface files.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/" {
		path = "/index.html"
	}

	// Serve index.html with dynamic placeholders.
	if path == "/index.html" {
		w.Header().Set("Content-Type", "text/html")
		if err := indexTmpl.Execute(w, indexData{
			Version: Version,
			Year:    time.Now().Year(),
		}); err != nil {
			slog.Error("failed to write index.html", "error", err)
		}
		return
	}

	if serveStaticFile(w, path) {
		return
	}

	http.NotFound(w, r)
}

// Start begins the HTTP server.
// Returns an *http.Server that can be used for graceful shutdown.
func (s *Server) Start() *http.Server {
	addr := fmt.Sprintf(":%d", s.config.Snapshot().WebPort)
	slog.Info("starting web server", "addr", addr)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.SetupRoutes(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	return srv
}
