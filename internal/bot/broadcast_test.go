package bot

import (
	"context"
	"fmt"
	"testing"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// subscriberSends returns the SendMessage calls addressed to anyone but the owner.
func subscriberSends(env *testEnv) []sentCall {
	var out []sentCall
	for _, c := range env.sender.byMethod("SendMessage") {
		if c.chatID != ownerID {
			out = append(out, c)
		}
	}
	return out
}

func TestBroadcast_NonOwnerDenied(t *testing.T) {
	env := setupHandler(t, 1, 2, 3)

	env.h.ownerOnly(env.h.broadcastHandler)(context.Background(), nil, textUpdate(strangerID, "/broadcast hello"))

	replies := env.sender.byMethod("SendMessage")
	require.Len(t, replies, 1)
	assert.Equal(t, int64(strangerID), replies[0].chatID)
	assert.Equal(t, catalog["en"].denied, replies[0].text)
	assert.Zero(t, env.repo.reads)
	assert.Zero(t, env.pacer.pauses)
}

func TestBroadcast_EmptyMessage(t *testing.T) {
	env := setupHandler(t, 1, 2, 3)

	env.h.ownerOnly(env.h.broadcastHandler)(context.Background(), nil, textUpdate(ownerID, "/broadcast   "))

	replies := env.sender.byMethod("SendMessage")
	require.Len(t, replies, 1)
	assert.Equal(t, catalog["en"].broadcastUsage, replies[0].text)
	assert.Empty(t, subscriberSends(env))
	assert.Zero(t, env.pacer.pauses)
}

func TestBroadcast_AllDelivered(t *testing.T) {
	subscribers := []int64{1, 2, 3, 4, 5}
	env := setupHandler(t, subscribers...)

	env.h.ownerOnly(env.h.broadcastHandler)(context.Background(), nil, textUpdate(ownerID, "/broadcast <b>News</b>\nsecond line"))

	sends := subscriberSends(env)
	require.Len(t, sends, len(subscribers))
	for i, c := range sends {
		assert.Equal(t, subscribers[i], c.chatID)
		assert.Equal(t, "<b>News</b>\nsecond line", c.text)
		assert.Equal(t, models.ParseModeHTML, c.parseMode)
	}
	assert.Equal(t, len(subscribers), env.pacer.pauses)

	replies := env.sender.byMethod("SendMessage")
	last := replies[len(replies)-1]
	assert.Equal(t, fmt.Sprintf(catalog["en"].broadcastDone, 5, 0, 0), last.text)
	assert.Equal(t, fmt.Sprintf(catalog["en"].broadcastStart, 5), replies[0].text)
}

func TestBroadcast_CountsFailures(t *testing.T) {
	env := setupHandler(t)
	env.sender.sendErr[2] = fmt.Errorf("%w, Forbidden: bot was blocked by the user", tgbot.ErrorForbidden)
	env.sender.sendErr[4] = fmt.Errorf("%w, Bad Request: chat not found", tgbot.ErrorBadRequest)

	res := env.h.broadcast(context.Background(), []int64{1, 2, 3, 4, 5, 6}, "hello")

	assert.Equal(t, BroadcastResult{Attempted: 6, Succeeded: 4, Failed: 2, Blocked: 1}, res)
	assert.Equal(t, 6, env.pacer.pauses, "a pause follows every attempt, failed or not")
	assert.Len(t, subscriberSends(env), 4)
}

func TestBroadcast_StorageError(t *testing.T) {
	env := setupHandler(t, 1, 2)
	env.repo.failReads = true

	env.h.ownerOnly(env.h.broadcastHandler)(context.Background(), nil, textUpdate(ownerID, "/broadcast hi"))

	replies := env.sender.byMethod("SendMessage")
	require.Len(t, replies, 1)
	assert.Equal(t, catalog["en"].storageError, replies[0].text)
	assert.Zero(t, env.pacer.pauses)
}

func TestDelayPacer(t *testing.T) {
	p := NewDelayPacer(20 * time.Millisecond)
	start := time.Now()
	p.Pause(context.Background())
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p = NewDelayPacer(time.Hour)
	done := make(chan struct{})
	go func() {
		p.Pause(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pause did not return after cancellation")
	}

	assert.NotPanics(t, func() { NewDelayPacer(0).Pause(context.Background()) })
}
