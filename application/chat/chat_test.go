package chat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type StoreTestSuite struct {
	suite.Suite

	store *Store
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) SetupTest() {
	s.store = NewStore()
}

// friends makes user 1 a mutual contact of 2 and 3, who don't know each other.
func (s *StoreTestSuite) friends() {
	s.store.StoreContactList(1, []ID{2, 3})
	s.store.StoreContactList(2, []ID{1})
	s.store.StoreContactList(3, []ID{1})
}

func (s *StoreTestSuite) TestScenario() {
	// Nobody has contacts yet.
	s.ErrorIs(s.store.CreateChat(1, [2]ID{1, 2}), ErrInvalidParticipants)

	// Contact lists must be symmetric.
	s.store.StoreContactList(1, []ID{1, 2})
	s.ErrorIs(s.store.CreateChat(1, [2]ID{1, 2}), ErrInvalidParticipants)

	s.store.StoreContactList(2, []ID{2, 1})
	s.Require().NoError(s.store.CreateChat(1, [2]ID{1, 2}))

	expected := []Chat{{ID: 1, ParticipantIDs: [2]ID{1, 2}}}
	s.Equal(expected, s.store.ListChats(1))
	s.Equal(expected, s.store.ListChats(2))

	messages, err := s.store.Messages(1)
	s.Require().NoError(err)
	s.Empty(messages)

	zero := Message{ID: "aed531ba-7a41-46dd-8e5d-9a5f7c16bfee", Timestamp: 0, Message: "zero", SourceUserID: 1, DestinationUserID: 2}
	four := Message{ID: "b213468f-eed5-4119-be6c-bb780120502a", Timestamp: 4, Message: "four", SourceUserID: 2, DestinationUserID: 1}
	three := Message{ID: "16cce9af-4086-4219-a54b-8b082b3c42ef", Timestamp: 3, Message: "three", SourceUserID: 1, DestinationUserID: 2}
	for _, m := range []Message{zero, four, three} {
		s.Require().NoError(s.store.AddMessage(1, m))
	}

	messages, err = s.store.Messages(1)
	s.Require().NoError(err)
	s.Equal([]Message{zero, three, four}, messages)
}

func (s *StoreTestSuite) TestCreateChat() {
	s.friends()
	s.Require().NoError(s.store.CreateChat(10, [2]ID{1, 2}))

	testcases := []struct {
		desc         string
		id           ID
		participants [2]ID
		expected     error
	}{
		{desc: "id taken", id: 10, participants: [2]ID{1, 3}, expected: ErrChatExists},
		{desc: "pair already chatting", id: 11, participants: [2]ID{1, 2}, expected: ErrChatExists},
		{desc: "pair already chatting reversed", id: 11, participants: [2]ID{2, 1}, expected: ErrChatExists},
		{desc: "not contacts", id: 11, participants: [2]ID{2, 3}, expected: ErrInvalidParticipants},
		{desc: "unknown users", id: 11, participants: [2]ID{7, 8}, expected: ErrInvalidParticipants},
	}
	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			s.ErrorIs(s.store.CreateChat(tc.id, tc.participants), tc.expected)
		})
	}

	s.Require().NoError(s.store.CreateChat(11, [2]ID{3, 1}))
	s.Equal([]Chat{
		{ID: 10, ParticipantIDs: [2]ID{1, 2}},
		{ID: 11, ParticipantIDs: [2]ID{3, 1}},
	}, s.store.ListChats(1))
}

func (s *StoreTestSuite) TestAddMessage() {
	s.friends()
	s.Require().NoError(s.store.CreateChat(1, [2]ID{1, 2}))
	s.Require().NoError(s.store.CreateChat(2, [2]ID{1, 3}))

	testcases := []struct {
		desc     string
		chatID   ID
		source   ID
		dest     ID
		expected error
	}{
		{desc: "sender to receiver", chatID: 1, source: 1, dest: 2},
		{desc: "receiver to sender", chatID: 1, source: 2, dest: 1},
		{desc: "unknown chat", chatID: 3, source: 1, dest: 2, expected: ErrUnknownChat},
		{desc: "chat of another pair", chatID: 2, source: 1, dest: 2, expected: ErrUnknownChat},
		{desc: "outsider", chatID: 1, source: 3, dest: 2, expected: ErrUnknownChat},
		{desc: "wrong destination", chatID: 1, source: 1, dest: 3, expected: ErrUnknownChat},
	}
	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			err := s.store.AddMessage(tc.chatID, Message{SourceUserID: tc.source, DestinationUserID: tc.dest})
			if tc.expected == nil {
				s.NoError(err)
			} else {
				s.ErrorIs(err, tc.expected)
			}
		})
	}

	messages, err := s.store.Messages(1)
	s.Require().NoError(err)
	s.Len(messages, 2)

	messages, err = s.store.Messages(2)
	s.Require().NoError(err)
	s.Empty(messages)
}

func (s *StoreTestSuite) TestMessagesUnknownChat() {
	messages, err := s.store.Messages(1)
	s.ErrorIs(err, ErrUnknownChat)
	s.Nil(messages)
}

func (s *StoreTestSuite) TestMessagesAreCopied() {
	s.friends()
	s.Require().NoError(s.store.CreateChat(1, [2]ID{1, 2}))
	s.Require().NoError(s.store.AddMessage(1, Message{Message: "kept", SourceUserID: 1, DestinationUserID: 2}))

	messages, err := s.store.Messages(1)
	s.Require().NoError(err)
	messages[0].Message = "changed"

	messages, err = s.store.Messages(1)
	s.Require().NoError(err)
	s.Equal("kept", messages[0].Message)
}

func (s *StoreTestSuite) TestContactListIsReplaced() {
	s.friends()
	s.store.StoreContactList(2, []ID{3})
	s.ErrorIs(s.store.CreateChat(1, [2]ID{1, 2}), ErrInvalidParticipants)
}

func (s *StoreTestSuite) TestEmptyListsEncodeAsArrays() {
	s.friends()
	s.Require().NoError(s.store.CreateChat(1, [2]ID{1, 2}))

	b, err := json.Marshal(s.store.ListChats(3))
	s.Require().NoError(err)
	s.Equal("[]", string(b))

	messages, err := s.store.Messages(1)
	s.Require().NoError(err)
	b, err = json.Marshal(messages)
	s.Require().NoError(err)
	s.Equal("[]", string(b))
}

func TestInsertOrdersByTimestamp(t *testing.T) {
	c := storedChat{participantIDs: [2]ID{0, 1}}

	data := []struct {
		timestamp uint64
		message   string
	}{
		{1, "test1"},
		{4, "test2"},
		{3, "test3"},
		{5, "test4"},
		{0, "test5"},
		{6, "test6"},
		{2, "test7"},
		{9, "test8"},
		{0, "test9"},
		{9, "test10"},
	}
	for _, d := range data {
		c.insert(Message{Timestamp: d.timestamp, Message: d.message})
	}

	var got []string
	for _, m := range c.messages {
		got = append(got, m.Message)
	}
	assert.Equal(t, []string{
		"test5", "test9", "test1", "test7", "test3", "test2", "test4", "test6", "test8", "test10",
	}, got)
}
