// Package widget serves the embeddable chat widget: a floating button
// and panel embedded in the host page, backed by the conversation
// controller. The page itself is a thin reflection layer; all state
// lives server-side.
package widget

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/sanagustin/chatwidget/pkg/config"
	"github.com/sanagustin/chatwidget/pkg/conversation"
	"github.com/sanagustin/chatwidget/pkg/logger"
)

type Server struct {
	cfg    config.WidgetConfig
	ctrl   *conversation.Controller
	server *http.Server
}

type sendRequest struct {
	Message string `json:"message"`
}

type sendResponse struct {
	Accepted bool   `json:"accepted"`
	State    string `json:"state"`
}

func NewServer(cfg config.WidgetConfig, ctrl *conversation.Controller) *Server {
	return &Server{cfg: cfg, ctrl: ctrl}
}

// Handler builds the route table; split out so tests can drive the
// handlers through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleUI)
	mux.HandleFunc("/widget/send", s.handleSend)
	mux.HandleFunc("/widget/poll", s.handlePoll)
	mux.HandleFunc("/widget/toggle", s.handleToggle)
	mux.HandleFunc("/widget/open", s.handleOpen(true))
	mux.HandleFunc("/widget/close", s.handleOpen(false))
	mux.HandleFunc("/api/health", s.handleHealth)
	return mux
}

func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.server = &http.Server{Addr: addr, Handler: s.Handler()}

	logger.InfoCF("widget", "Widget server started", map[string]interface{}{"addr": addr})

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ErrorCF("widget", "Widget server error", map[string]interface{}{"error": err.Error()})
		}
	}()

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	accepted := s.ctrl.Submit(req.Message)
	w.Header().Set("Content-Type", "application/json")
	if accepted {
		w.WriteHeader(http.StatusAccepted)
	}
	json.NewEncoder(w).Encode(sendResponse{Accepted: accepted, State: s.ctrl.Snapshot().State})
}

func (s *Server) handlePoll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.ctrl.Snapshot())
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	open := s.ctrl.Toggle()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"open": open})
}

func (s *Server) handleOpen(open bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.ctrl.SetOpen(open)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":     "ok",
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"visitor_id": s.ctrl.VisitorID(),
	})
}

func (s *Server) handleUI(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	title := s.cfg.Title
	if title == "" {
		title = "Chat"
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, strings.ReplaceAll(widgetHTML, "__TITLE__", html.EscapeString(title)))
}
