package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"log/slog"

	"github.com/gophora/portal/internal/session"
)

// chatLogKey stores the session's chat transcript as a JSON array.
const chatLogKey = "chatLog"

const chatGreeting = "Hello! I'm GOPHORA AI. How can I help you today?"

type chatMessage struct {
	From string `json:"from"`
	Text string `json:"text"`
}

type chatData struct {
	Messages []chatMessage
}

type ChatHandler struct {
	values *session.Store
}

func NewChatHandler(values *session.Store) *ChatHandler {
	return &ChatHandler{values: values}
}

// replyTo is the mocked assistant. Keyword matching only; there is no
// model behind it.
func replyTo(input string) string {
	text := strings.ToLower(input)
	switch {
	case strings.Contains(text, "ai"):
		return "Here are some AI opportunities for you!"
	case strings.Contains(text, "design"):
		return "Check out these design-focused opportunities!"
	default:
		return "Interesting! Let me suggest some opportunities you might like."
	}
}

func (h *ChatHandler) transcript(ctx context.Context, sid string) []chatMessage {
	greeting := []chatMessage{{From: "ai", Text: chatGreeting}}

	raw, ok, err := h.values.Read(ctx, sid, chatLogKey)
	if err != nil || !ok {
		return greeting
	}
	var msgs []chatMessage
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil || len(msgs) == 0 {
		return greeting
	}
	return msgs
}

func (h *ChatHandler) save(ctx context.Context, sid string, msgs []chatMessage) {
	b, err := json.Marshal(msgs)
	if err != nil {
		logger.Warn("chat transcript encode failed", slog.Any("err", err))
		return
	}
	// transcript persistence degrades silently, the reply still renders
	if err := h.values.Write(ctx, sid, chatLogKey, string(b)); err != nil {
		logger.Warn("chat transcript write failed", slog.Any("err", err))
	}
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	p := newPage(r, "Chat")
	p.Data = chatData{Messages: h.transcript(r.Context(), sidFrom(r))}
	render(w, http.StatusOK, "chat", p)
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	sid := sidFrom(r)
	msgs := h.transcript(r.Context(), sid)

	input := strings.TrimSpace(r.PostFormValue("message"))
	if input != "" {
		msgs = append(msgs,
			chatMessage{From: "user", Text: input},
			chatMessage{From: "ai", Text: replyTo(input)},
		)
		h.save(r.Context(), sid, msgs)
	}

	p := newPage(r, "Chat")
	p.Data = chatData{Messages: msgs}
	render(w, http.StatusOK, "chat", p)
}
