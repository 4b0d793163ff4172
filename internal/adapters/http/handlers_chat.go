package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"parish/internal/adapters/gemini"
)

// chatPart mirrors the upstream content-part shape used by the
// frontend chat widget.
type chatPart struct {
	Text string `json:"text"`
}

// chatTurn is one prior exchange in the conversation history.
type chatTurn struct {
	Role  string     `json:"role"`
	Parts []chatPart `json:"parts"`
}

// handleChat handles POST /api/gemini: the parish assistant proxy.
// The request carries the visitor's message and the prior conversation
// history; the reply comes from the configured generative client.
func handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Message string     `json:"message"`
		History []chatTurn `json:"history"`
	}
	if err := strictDecode(r, &body); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(body.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Message is required"})
		return
	}

	history := make([]gemini.Turn, 0, len(body.History))
	for _, turn := range body.History {
		var text strings.Builder
		for _, part := range turn.Parts {
			text.WriteString(part.Text)
		}
		history = append(history, gemini.Turn{Role: turn.Role, Text: text.String()})
	}

	if chatClient == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "assistant is not configured"})
		return
	}
	reply, err := chatClient.Generate(r.Context(), body.Message, history)
	if err != nil {
		// Relay the upstream status when the API itself refused the
		// call (quota, bad key); transport failures stay a 500.
		status := http.StatusInternalServerError
		var apiErr *gemini.APIError
		if errors.As(err, &apiErr) {
			status = apiErr.StatusCode
		}
		writeJSON(w, status, map[string]string{
			"error":   "Failed to get response from assistant",
			"details": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

// handleHealth handles GET /api/health. The live probe sends a short
// test prompt through the configured client.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	probeOK := false
	if chatClient != nil {
		probeOK = chatClient.Ping(r.Context()) == nil
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "OK",
		"timestamp":         timeNow().Format(time.RFC3339),
		"apiKeyConfigured":  chatLive,
		"apiTestSuccessful": probeOK,
		"environment":       appEnv,
	})
}
