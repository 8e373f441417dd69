// Package api serves a chat.Store over HTTP.
package api

import (
	"encoding/json"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"event-http/application/chat"
	"event-http/application/http"
	"event-http/application/http/server"

	"github.com/pkg/errors"
)

const (
	msgUnknownRoute        = "The route is unknown"
	msgChatParsingError    = "The supplied chat was not created due to a parsing error"
	msgChatValidationError = "The supplied chat was not created due to a validation error"
	msgChatExists          = "The supplied chat was not created because one already exists"
	msgChatCreated         = "The supplied chat was created"
	msgUnknownChat         = "A chat with the provided id does not exist"
	msgMessageAdded        = "The supplied message was added to the chat"
	msgMessageParsingError = "The supplied message was not added to the chat due to a parsing error"
	msgContactsReadOnly    = "Contact lists cannot be managed over HTTP"
)

var (
	textPlain       = []http.Field{{Name: "Content-Type", Value: "text/plain"}}
	applicationJSON = []http.Field{{Name: "Content-Type", Value: "application/json"}}
)

// Handler routes requests to a chat.Store.
//
//	POST /chats                  create a chat
//	POST /chats/{id}/messages    add a message to a chat
//	GET  /chats?userId={id}      list the chats of a user
//	GET  /chats/{id}/messages    list the messages of a chat
type Handler struct {
	store  *chat.Store
	logger *slog.Logger
}

var _ server.Handler = (*Handler)(nil)

func New(store *chat.Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

func (h *Handler) Serve(req *http.Request) http.Response {
	path, query, hasQuery := strings.Cut(req.Path, "?")
	parts := strings.Split(strings.TrimSuffix(strings.TrimPrefix(path, "/"), "/"), "/")

	switch {
	case req.Method == http.MethodPost && matches(parts, "chats"):
		return h.createChat(req)
	case req.Method == http.MethodPost && matches(parts, "chats", "", "messages"):
		return h.addMessage(req, parts[1])
	case req.Method == http.MethodGet && matches(parts, "chats") && hasQuery:
		values, err := url.ParseQuery(query)
		if err != nil || !values.Has("userId") {
			break
		}
		return h.listChats(req, values.Get("userId"))
	case req.Method == http.MethodGet && matches(parts, "chats", "", "messages"):
		return h.messages(req, parts[1])
	case req.Method == http.MethodPost && matches(parts, "contacts", ""):
		return text(req, http.StatusNotImplemented.Code, msgContactsReadOnly)
	}

	return text(req, http.StatusNotFound.Code, msgUnknownRoute)
}

// matches reports whether parts has the shape of pattern.
// An empty pattern segment matches any non-empty part.
func matches(parts []string, pattern ...string) bool {
	if len(parts) != len(pattern) {
		return false
	}
	for i, p := range pattern {
		if parts[i] == "" || (p != "" && parts[i] != p) {
			return false
		}
	}
	return true
}

type chatPayload struct {
	ID             *chat.ID  `json:"id"`
	ParticipantIDs []chat.ID `json:"participantIds"`
}

func (h *Handler) createChat(req *http.Request) http.Response {
	var p chatPayload
	if err := json.Unmarshal(req.Body, &p); err != nil || p.ID == nil || len(p.ParticipantIDs) != 2 {
		h.logger.Debug("rejected chat", "error", err)
		return text(req, http.StatusBadRequest.Code, msgChatParsingError)
	}

	err := h.store.CreateChat(*p.ID, [2]chat.ID{p.ParticipantIDs[0], p.ParticipantIDs[1]})
	switch {
	case err == nil:
		h.logger.Debug("created chat", "chat", uint64(*p.ID))
		return text(req, http.StatusOK.Code, msgChatCreated)
	case errors.Is(err, chat.ErrChatExists):
		return text(req, http.StatusBadRequest.Code, msgChatExists)
	default:
		h.logger.Debug("rejected chat", "error", err)
		return text(req, http.StatusBadRequest.Code, msgChatValidationError)
	}
}

type messagePayload struct {
	ID                *string  `json:"id"`
	Timestamp         *uint64  `json:"timestamp"`
	Message           *string  `json:"message"`
	SourceUserID      *chat.ID `json:"sourceUserId"`
	DestinationUserID *chat.ID `json:"destinationUserId"`
}

func (p *messagePayload) complete() bool {
	return p.ID != nil && p.Timestamp != nil && p.Message != nil &&
		p.SourceUserID != nil && p.DestinationUserID != nil
}

func (h *Handler) addMessage(req *http.Request, rawChatID string) http.Response {
	var p messagePayload
	if err := json.Unmarshal(req.Body, &p); err != nil || !p.complete() {
		h.logger.Debug("rejected message", "error", err)
		return text(req, http.StatusBadRequest.Code, msgMessageParsingError)
	}

	chatID, ok := parseID(rawChatID)
	if !ok {
		return text(req, http.StatusNotFound.Code, msgUnknownChat)
	}

	err := h.store.AddMessage(chatID, chat.Message{
		ID:                *p.ID,
		Timestamp:         *p.Timestamp,
		Message:           *p.Message,
		SourceUserID:      *p.SourceUserID,
		DestinationUserID: *p.DestinationUserID,
	})
	if err != nil {
		h.logger.Debug("rejected message", "error", err)
		return text(req, http.StatusNotFound.Code, msgUnknownChat)
	}

	return text(req, http.StatusOK.Code, msgMessageAdded)
}

func (h *Handler) listChats(req *http.Request, rawUserID string) http.Response {
	userID, ok := parseID(rawUserID)
	if !ok {
		return h.respondJSON(req, []chat.Chat{})
	}
	return h.respondJSON(req, h.store.ListChats(userID))
}

func (h *Handler) messages(req *http.Request, rawChatID string) http.Response {
	chatID, ok := parseID(rawChatID)
	if !ok {
		return text(req, http.StatusNotFound.Code, msgUnknownChat)
	}

	messages, err := h.store.Messages(chatID)
	if err != nil {
		return text(req, http.StatusNotFound.Code, msgUnknownChat)
	}
	return h.respondJSON(req, messages)
}

func (h *Handler) respondJSON(req *http.Request, v any) http.Response {
	body, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("failed to encode response", "error", err)
		body = []byte("[]")
	}
	return http.NewResponse(req.Version, http.StatusOK.Code, applicationJSON, string(body))
}

func text(req *http.Request, status uint16, body string) http.Response {
	return http.NewResponse(req.Version, status, textPlain, body)
}

func parseID(s string) (chat.ID, bool) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return chat.ID(n), true
}
