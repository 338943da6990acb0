package chat

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat-assistant/internal/adapter/memory"
	"docchat-assistant/internal/config"
	"docchat-assistant/internal/domain"
)

const testPlaceholder = "Thinking..."

type fakeClient struct {
	mu     sync.Mutex
	result Result
	calls  [][]Entry
	onSend func(entries []Entry) Result
}

func (f *fakeClient) Send(_ context.Context, entries []Entry) Result {
	f.mu.Lock()
	f.calls = append(f.calls, entries)
	f.mu.Unlock()
	if f.onSend != nil {
		return f.onSend(entries)
	}
	return f.result
}

func (f *fakeClient) lastCall() []Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

func newTestSession(client Client) (*Session, *memory.Store) {
	store := memory.NewStore()
	cfg := config.Config{PlaceholderText: testPlaceholder}
	return NewSession(store, client, cfg, zerolog.Nop()), store
}

func TestSendAppendsUserThenPlaceholder(t *testing.T) {
	var observed []domain.Message
	client := &fakeClient{}
	session, store := newTestSession(client)
	client.onSend = func([]Entry) Result {
		observed = store.Snapshot()
		return Result{Kind: Answered, Text: "hi there"}
	}

	resolved, err := session.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi there", resolved)

	// store state at the moment the completion call went out
	require.Len(t, observed, 2)
	assert.Equal(t, domain.SenderUser, observed[0].Sender)
	assert.Equal(t, "hello", observed[0].Text)
	assert.Equal(t, domain.SenderAssistant, observed[1].Sender)
	assert.Equal(t, testPlaceholder, observed[1].Text)
}

func TestSendEmptyInputIsNoOp(t *testing.T) {
	for _, input := range []string{"", "   ", "\t\n "} {
		client := &fakeClient{result: Result{Kind: Answered, Text: "x"}}
		session, store := newTestSession(client)

		_, err := session.Send(context.Background(), input)
		assert.ErrorIs(t, err, ErrEmptyInput)
		assert.Empty(t, store.Snapshot())
		assert.Empty(t, client.calls)
	}
}

func TestSendWhileBusyIsNoOp(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	client := &fakeClient{}
	session, store := newTestSession(client)
	client.onSend = func([]Entry) Result {
		close(started)
		<-release
		return Result{Kind: Answered, Text: "done"}
	}

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_, err := session.Send(context.Background(), "first")
		assert.NoError(t, err)
	}()
	<-started

	assert.True(t, session.Busy())
	_, err := session.Send(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Len(t, store.Snapshot(), 2)

	close(release)
	<-firstDone
	assert.False(t, session.Busy())
}

func TestPlaceholderResolvedOnSuccess(t *testing.T) {
	client := &fakeClient{result: Result{Kind: Answered, Text: "Paris"}}
	session, store := newTestSession(client)

	resolved, err := session.Send(context.Background(), "What is the capital of France?")
	require.NoError(t, err)
	assert.Equal(t, "Paris", resolved)

	msgs := store.Snapshot()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Paris", msgs[1].Text)
	assert.NotEqual(t, testPlaceholder, msgs[1].Text)
	assert.False(t, session.Busy())
}

func TestPlaceholderResolvedOnMalformed(t *testing.T) {
	client := &fakeClient{result: Result{Kind: Malformed, Text: "{}"}}
	session, store := newTestSession(client)

	resolved, err := session.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "{}", resolved)
	assert.Equal(t, "{}", store.Snapshot()[1].Text)
	assert.False(t, session.Busy())
}

func TestMalformedWithEmptyDumpFallsBackToApology(t *testing.T) {
	client := &fakeClient{result: Result{Kind: Malformed, Text: "   "}}
	session, store := newTestSession(client)

	resolved, err := session.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, apologyText, resolved)
	assert.Equal(t, apologyText, store.Snapshot()[1].Text)
}

func TestPlaceholderResolvedOnFailure(t *testing.T) {
	client := &fakeClient{result: Result{Kind: Failed, Err: context.DeadlineExceeded}}
	session, store := newTestSession(client)

	resolved, err := session.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, failureText, resolved)

	msgs := store.Snapshot()
	require.Len(t, msgs, 2)
	assert.Equal(t, failureText, msgs[1].Text)
	assert.False(t, session.Busy())
}

func TestPayloadNeverContainsPlaceholder(t *testing.T) {
	client := &fakeClient{result: Result{Kind: Answered, Text: "first answer"}}
	session, _ := newTestSession(client)
	ctx := context.Background()

	_, err := session.Send(ctx, "hi")
	require.NoError(t, err)
	_, err = session.Send(ctx, "again")
	require.NoError(t, err)

	entries := client.lastCall()
	require.Len(t, entries, 3)
	assert.Equal(t, []Entry{
		{Role: RoleUser, Text: "hi"},
		{Role: RoleModel, Text: "first answer"},
		{Role: RoleUser, Text: "again"},
	}, entries)
	for _, e := range entries {
		assert.NotEqual(t, testPlaceholder, e.Text)
	}
}

func TestDocumentTextPersistsAcrossTurns(t *testing.T) {
	client := &fakeClient{result: Result{Kind: Answered, Text: "ok"}}
	session, _ := newTestSession(client)
	ctx := context.Background()

	session.AttachDocument("report.pdf", "T1")
	assert.Equal(t, "report.pdf", session.DocumentName())

	_, err := session.Send(ctx, "hello")
	require.NoError(t, err)
	entries := client.lastCall()
	assert.Equal(t, "hello\n\nT1", entries[len(entries)-1].Text)

	_, err = session.Send(ctx, "world")
	require.NoError(t, err)
	entries = client.lastCall()
	assert.Equal(t, "world\n\nT1", entries[len(entries)-1].Text)

	session.AttachDocument("other.pdf", "T2")
	_, err = session.Send(ctx, "next")
	require.NoError(t, err)
	entries = client.lastCall()
	assert.Equal(t, "next\n\nT2", entries[len(entries)-1].Text)
}

// droppingStore loses the placeholder, so Replace always misses.
type droppingStore struct {
	domain.ConversationStore
}

func (droppingStore) Replace(uuid.UUID, string) bool { return false }

func TestReplaceMissDoesNotFailTheTurn(t *testing.T) {
	client := &fakeClient{result: Result{Kind: Answered, Text: "answer"}}
	store := droppingStore{memory.NewStore()}
	cfg := config.Config{PlaceholderText: testPlaceholder}
	session := NewSession(store, client, cfg, zerolog.Nop())

	resolved, err := session.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "answer", resolved)
	assert.False(t, session.Busy())
}
