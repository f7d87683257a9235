package repositories

import (
	"chat-hub/domain"
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *badger.DB {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Record_Multiple_Room_Messages(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewMessageRepository(openDB(t), logs.GetLoggerFromLevel(slog.LevelDebug))
	content := "this message will self destruct in 5 seconds"

	// Given three messages stored in order
	var stored []domain.Message
	for _, author := range []string{"Alice", "Bob", "Clara"} {
		msg, err := repository.Create(ctx, domain.MessageRecord{Room: "general", User: author, Text: content})
		req.NoError(err)
		req.NotZero(msg.ID)
		req.False(msg.Timestamp.IsZero())
		stored = append(stored, msg)
	}

	// When the history is read
	history, err := repository.FindRoomHistory(ctx, "general", 500)
	req.NoError(err)

	// Then all messages come back oldest first
	req.Equal(stored, history)
}

func Test_Room_History_Keeps_The_Most_Recent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewMessageRepository(openDB(t), logs.GetLoggerFromLevel(slog.LevelDebug))

	for i := 0; i < 5; i++ {
		_, err := repository.Create(ctx, domain.MessageRecord{Room: "general", User: "alice", Text: fmt.Sprintf("message %d", i)})
		req.NoError(err)
	}

	// When only two messages are asked for
	history, err := repository.FindRoomHistory(ctx, "general", 2)
	req.NoError(err)

	// Then the two newest are returned, ascending
	req.Equal([]string{"message 3", "message 4"}, lo.Map(history, func(m domain.Message, _ int) string { return m.Text }))
}

func Test_Room_Histories_Do_Not_Leak(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewMessageRepository(openDB(t), logs.GetLoggerFromLevel(slog.LevelDebug))

	// Given a room id that is a prefix of another one
	_, err := repository.Create(ctx, domain.MessageRecord{Room: "gen", User: "alice", Text: "short"})
	req.NoError(err)
	_, err = repository.Create(ctx, domain.MessageRecord{Room: "general", User: "bob", Text: "long"})
	req.NoError(err)

	// Then each history only holds its own room
	history, err := repository.FindRoomHistory(ctx, "gen", 0)
	req.NoError(err)
	req.Len(history, 1)
	req.Equal("short", history[0].Text)

	history, err = repository.FindRoomHistory(ctx, "unknown", 0)
	req.NoError(err)
	req.Empty(history)
}

func Test_Private_History_By_Conversation(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewMessageRepository(openDB(t), logs.GetLoggerFromLevel(slog.LevelDebug))

	aliceBob, err := domain.Participants("bob", "alice")
	req.NoError(err)
	aliceCarol, err := domain.Participants("alice", "carol")
	req.NoError(err)

	// Given messages in two conversations
	_, err = repository.Create(ctx, domain.MessageRecord{IsPrivate: true, Participants: aliceBob, User: "alice", Text: "hi bob"})
	req.NoError(err)
	_, err = repository.Create(ctx, domain.MessageRecord{IsPrivate: true, Participants: aliceBob, User: "bob", Text: "hi alice"})
	req.NoError(err)
	_, err = repository.Create(ctx, domain.MessageRecord{IsPrivate: true, Participants: aliceCarol, User: "carol", Text: "hey"})
	req.NoError(err)

	// When bob's conversation with alice is read
	key, err := domain.DeriveConversationKey("bob", "alice")
	req.NoError(err)
	history, err := repository.FindPrivateHistory(ctx, key, 1000)
	req.NoError(err)

	// Then only that conversation is returned, in order
	req.Len(history, 2)
	req.Equal("hi bob", history[0].Text)
	req.Equal("hi alice", history[1].Text)
	req.Equal([]string{"alice", "bob"}, history[0].Participants)
	req.True(history[0].IsPrivate)
}

func Test_Private_Message_Needs_Two_Participants(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openDB(t), logs.GetLoggerFromLevel(slog.LevelDebug))

	_, err := repository.Create(context.Background(), domain.MessageRecord{IsPrivate: true, Participants: []string{"alice"}, User: "alice", Text: "hi"})
	req.Error(err)
}
