// Package portal serves the HTTP surface used by the web portal: posting a
// message to a conversation and inspecting the tools a settings record
// declares to the provider.
package portal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/oatsbridge/oatsbridge/internal/schema"
)

const maxBodySize = 64 * 1024

// ToolLister returns the provider declarations of a chat settings record.
type ToolLister interface {
	ListProviderTools(ctx context.Context, settingsID string) ([]schema.ProviderToolDeclaration, error)
}

// Server serves the portal API and a health endpoint.
type Server struct {
	addr  string
	agent schema.AgentLooper
	tools ToolLister
	srv   *http.Server
}

// NewServer creates a Server listening on host:port.
func NewServer(host string, port int, agent schema.AgentLooper, tools ToolLister) *Server {
	s := &Server{
		addr:  net.JoinHostPort(host, strconv.Itoa(port)),
		agent: agent,
		tools: tools,
	}
	s.srv = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routing mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/conversations/{chatID}/messages", s.handlePostMessage)
	mux.HandleFunc("GET /api/chat-settings/{id}/provider-tools", s.handleProviderTools)
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Portal listening", "addr", s.addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return ctx.Err()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type postMessageRequest struct {
	Content    string `json:"content"`
	Sender     string `json:"sender"`
	SenderName string `json:"senderName"`
}

type postMessageResponse struct {
	Response string `json:"response"`
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}
	if len(body) > maxBodySize {
		writeError(w, http.StatusRequestEntityTooLarge, "message too large")
		return
	}

	var req postMessageRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	reply := s.agent.ProcessDirect(r.Context(), schema.Inbound{
		ChatID:     r.PathValue("chatID"),
		Sender:     req.Sender,
		SenderName: req.SenderName,
		Content:    req.Content,
		Type:       schema.MessageText,
		Source:     schema.SourcePortal,
	})
	writeJSON(w, http.StatusOK, postMessageResponse{Response: reply})
}

func (s *Server) handleProviderTools(w http.ResponseWriter, r *http.Request) {
	decls, err := s.tools.ListProviderTools(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, schema.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		slog.Error("List provider tools", "settings", r.PathValue("id"), "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if decls == nil {
		decls = []schema.ProviderToolDeclaration{}
	}
	writeJSON(w, http.StatusOK, decls)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("Write response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
