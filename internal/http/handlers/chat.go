package handlers

import (
	"encoding/json"
	"net/http"
)

func (h *Handlers) ChatbotPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "chatbot.html", "title.chat", nil)
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// Chatbot forwards the visitor's message to the responder and returns its
// reply verbatim.
func (h *Handlers) Chatbot(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response: h.responder.Respond(req.Message),
	})
}
