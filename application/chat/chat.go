// Package chat keeps chats between pairs of users who list each other as contacts.
package chat

import (
	"slices"

	"github.com/pkg/errors"
)

type ID uint64

type Chat struct {
	ID             ID    `json:"id"`
	ParticipantIDs [2]ID `json:"participantIds"`
}

type Message struct {
	ID                string `json:"id"`
	Timestamp         uint64 `json:"timestamp"`
	Message           string `json:"message"`
	SourceUserID      ID     `json:"sourceUserId"`
	DestinationUserID ID     `json:"destinationUserId"`
}

var (
	ErrChatExists          = errors.New("chat already exists")
	ErrInvalidParticipants = errors.New("participants are not each other's contacts")
	ErrUnknownChat         = errors.New("chat does not exist")
)

type storedChat struct {
	participantIDs [2]ID
	// Sorted by timestamp. Equal timestamps keep insertion order.
	messages []Message
}

// insert places m after every message that is not newer than it.
// Messages mostly arrive in order, so the scan starts at the end.
func (c *storedChat) insert(m Message) {
	i := len(c.messages)
	for i > 0 && c.messages[i-1].Timestamp > m.Timestamp {
		i--
	}
	c.messages = slices.Insert(c.messages, i, m)
}

type chatRef struct {
	id   ID
	peer ID
}

// Store is not safe for concurrent use.
type Store struct {
	chats        map[ID]*storedChat
	chatsByUser  map[ID][]chatRef
	contactLists map[ID][]ID
}

func NewStore() *Store {
	return &Store{
		chats:        make(map[ID]*storedChat),
		chatsByUser:  make(map[ID][]chatRef),
		contactLists: make(map[ID][]ID),
	}
}

// StoreContactList replaces the contact list of user id.
func (s *Store) StoreContactList(id ID, list []ID) {
	s.contactLists[id] = slices.Clone(list)
}

func (s *Store) CreateChat(id ID, participantIDs [2]ID) error {
	a, b := participantIDs[0], participantIDs[1]

	if _, ok := s.chats[id]; ok {
		return errors.Wrapf(ErrChatExists, "chat %d", id)
	}
	if existing, ok := s.chatBetween(a, b); ok {
		return errors.Wrapf(ErrChatExists, "users %d and %d already share chat %d", a, b, existing)
	}
	if !s.isContact(a, b) || !s.isContact(b, a) {
		return errors.Wrapf(ErrInvalidParticipants, "users %d and %d", a, b)
	}

	s.chats[id] = &storedChat{
		participantIDs: participantIDs,
		messages:       make([]Message, 0),
	}
	s.chatsByUser[a] = append(s.chatsByUser[a], chatRef{id: id, peer: b})
	s.chatsByUser[b] = append(s.chatsByUser[b], chatRef{id: id, peer: a})

	return nil
}

// AddMessage adds m to chat chatID, which must be the chat between
// the message's source and destination.
func (s *Store) AddMessage(chatID ID, m Message) error {
	id, ok := s.chatBetween(m.SourceUserID, m.DestinationUserID)
	if !ok || id != chatID {
		return errors.Wrapf(ErrUnknownChat, "chat %d between users %d and %d",
			chatID, m.SourceUserID, m.DestinationUserID)
	}

	c, ok := s.chats[id]
	if !ok {
		return errors.Wrapf(ErrUnknownChat, "chat %d", id)
	}
	c.insert(m)

	return nil
}

// ListChats returns the chats of user userID in the order they were created.
func (s *Store) ListChats(userID ID) []Chat {
	refs := s.chatsByUser[userID]

	chats := make([]Chat, 0, len(refs))
	for _, ref := range refs {
		if c, ok := s.chats[ref.id]; ok {
			chats = append(chats, Chat{ID: ref.id, ParticipantIDs: c.participantIDs})
		}
	}
	return chats
}

// Messages returns the messages of chat chatID, oldest first.
func (s *Store) Messages(chatID ID) ([]Message, error) {
	c, ok := s.chats[chatID]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownChat, "chat %d", chatID)
	}
	return slices.Clone(c.messages), nil
}

func (s *Store) chatBetween(source, destination ID) (ID, bool) {
	for _, ref := range s.chatsByUser[source] {
		if ref.peer == destination {
			return ref.id, true
		}
	}
	return 0, false
}

func (s *Store) isContact(user, other ID) bool {
	return slices.Contains(s.contactLists[user], other)
}
