package ioadapt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/storyloom/storyloom/pkg/driver"
	"github.com/storyloom/storyloom/pkg/lang"
)

// WebConfig holds configuration for the websocket gateway. The gateway
// speaks plain HTTP; TLS termination belongs to whatever fronts it.
type WebConfig struct {
	Addr        string
	CORSOrigins []string
	JWTSecret   string
	JWTExpiry   time.Duration
}

// WebServer serves the websocket transport plus the small HTTP surface
// around it: token auth, health and the Prometheus endpoint.
type WebServer struct {
	driver    *driver.Driver
	log       *zap.Logger
	auth      *AuthService
	httpSrv   *http.Server
	mux       *http.ServeMux
	upgrader  websocket.Upgrader
	startTime time.Time
}

// NewWebServer creates a gateway bound to the driver. Auth requires the
// driver to carry an account store; without one the auth routes reject
// every login.
func NewWebServer(d *driver.Driver, log *zap.Logger, cfg WebConfig) *WebServer {
	if log == nil {
		log = zap.NewNop()
	}
	ws := &WebServer{
		driver:    d,
		log:       log,
		mux:       http.NewServeMux(),
		startTime: time.Now(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if len(cfg.CORSOrigins) == 0 {
					return true
				}
				origin := r.Header.Get("Origin")
				for _, o := range cfg.CORSOrigins {
					if strings.EqualFold(o, origin) {
						return true
					}
				}
				return false
			},
		},
	}
	if d.Accounts != nil {
		ws.auth = NewAuthService(d.Accounts, cfg.JWTSecret, cfg.JWTExpiry)
	}
	ws.registerRoutes(cfg)
	return ws
}

// Auth returns the auth service, nil when no account store is wired.
func (ws *WebServer) Auth() *AuthService { return ws.auth }

func (ws *WebServer) registerRoutes(cfg WebConfig) {
	ws.httpSrv = &http.Server{
		Addr:    cfg.Addr,
		Handler: ws.mux,
	}

	ws.mux.HandleFunc("GET /ws", ws.handleWebSocket)
	ws.mux.HandleFunc("POST /api/v1/auth/login", ws.handleAuthLogin)
	ws.mux.HandleFunc("POST /api/v1/auth/refresh", ws.handleAuthRefresh)
	ws.mux.HandleFunc("GET /health", ws.handleHealth)
	if ws.driver.Metrics != nil {
		ws.mux.Handle("GET /metrics", ws.driver.Metrics.Handler())
	}
}

// Start begins listening and blocks until Stop.
func (ws *WebServer) Start() error {
	ws.log.Info("web server listening", zap.String("addr", ws.httpSrv.Addr))
	err := ws.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts the gateway down.
func (ws *WebServer) Stop(ctx context.Context) error {
	return ws.httpSrv.Shutdown(ctx)
}

// WSMessage is the JSON frame format on the socket.
type WSMessage struct {
	Type string         `json:"type"`
	Text string         `json:"text,omitempty"`
	Data map[string]any `json:"data,omitempty"`
}

func (ws *WebServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	// A token is optional; without one the client goes through the
	// in-world login dialog like a telnet user.
	token := r.URL.Query().Get("token")
	if token == "" {
		if ah := r.Header.Get("Authorization"); strings.HasPrefix(ah, "Bearer ") {
			token = ah[7:]
		}
	}
	if token != "" {
		if ws.auth == nil {
			http.Error(w, `{"error":"auth not available"}`, http.StatusUnauthorized)
			return
		}
		if _, err := ws.auth.ValidateToken(token); err != nil {
			http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
			return
		}
	}

	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.log.Warn("websocket upgrade", zap.Error(err))
		return
	}

	remoteAddr := r.RemoteAddr
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx >= 0 {
			remoteAddr = strings.TrimSpace(xff[:idx])
		} else {
			remoteAddr = strings.TrimSpace(xff)
		}
	}
	wc := newWebsocketConn(conn)
	ws.log.Info("websocket client connected", zap.String("addr", remoteAddr))

	ws.driver.NewConnection(wc)
	go wc.readLoop(func() {
		ws.log.Info("websocket client hung up", zap.String("addr", remoteAddr))
		ws.driver.AfterPlayerAction(func(ctx *driver.Context) {
			for _, sess := range ws.driver.Sessions() {
				if sess.Conn == wc {
					ws.driver.Detach(sess, false)
				}
			}
		})
	})
}

func (ws *WebServer) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	if ws.auth == nil {
		http.Error(w, `{"error":"auth not available"}`, http.StatusServiceUnavailable)
		return
	}
	var req struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	token, err := ws.auth.Login(req.Name, req.Password)
	if err != nil {
		http.Error(w, `{"error":"invalid credentials"}`, http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

func (ws *WebServer) handleAuthRefresh(w http.ResponseWriter, r *http.Request) {
	if ws.auth == nil {
		http.Error(w, `{"error":"auth not available"}`, http.StatusServiceUnavailable)
		return
	}
	ah := r.Header.Get("Authorization")
	if !strings.HasPrefix(ah, "Bearer ") {
		http.Error(w, `{"error":"authorization required"}`, http.StatusUnauthorized)
		return
	}
	newToken, err := ws.auth.RefreshToken(ah[7:])
	if err != nil {
		http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": newToken})
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":         "ok",
		"story":          ws.driver.Config.Name,
		"players":        len(ws.driver.Sessions()),
		"uptime_seconds": time.Since(ws.startTime).Seconds(),
	})
}

// websocketConn adapts one socket to driver.Connection. Frames carry
// typed JSON; text output is stripped of style tags since the web
// client styles structurally.
type websocketConn struct {
	lineBuffer

	wmu       sync.Mutex
	conn      *websocket.Conn
	destroyed bool
}

func newWebsocketConn(conn *websocket.Conn) *websocketConn {
	return &websocketConn{lineBuffer: newLineBuffer(), conn: conn}
}

func (w *websocketConn) sendJSON(msg WSMessage) {
	w.wmu.Lock()
	defer w.wmu.Unlock()
	if w.destroyed {
		return
	}
	w.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	w.conn.WriteJSON(msg)
}

func (w *websocketConn) Output(paragraphs []string) {
	for _, p := range paragraphs {
		w.sendJSON(WSMessage{Type: "text", Text: lang.StripStyles(p)})
	}
}

func (w *websocketConn) WriteInputPrompt() {
	w.sendJSON(WSMessage{Type: "prompt"})
}

func (w *websocketConn) ClearScreen() {
	w.sendJSON(WSMessage{Type: "clear"})
}

func (w *websocketConn) Destroy() {
	w.wmu.Lock()
	defer w.wmu.Unlock()
	if !w.destroyed {
		w.destroyed = true
		w.conn.Close()
	}
}

func (w *websocketConn) readLoop(onClose func()) {
	defer onClose()
	for {
		_, msgBytes, err := w.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg WSMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			w.sendJSON(WSMessage{Type: "error", Text: "Invalid JSON message"})
			continue
		}
		switch msg.Type {
		case "line", "command":
			w.push(msg.Text)
		case "break":
			w.Break()
		default:
			w.sendJSON(WSMessage{Type: "error", Text: fmt.Sprintf("Unknown message type: %s", msg.Type)})
		}
	}
}
