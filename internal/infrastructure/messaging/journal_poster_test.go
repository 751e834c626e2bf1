package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/erp/treasury/internal/domain/treasury"
	"github.com/erp/treasury/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRequester struct {
	subject  string
	payload  []byte
	deadline bool
	reply    []byte
	err      error
}

func (f *fakeRequester) RequestWithContext(ctx context.Context, subject string, data []byte) (*nats.Msg, error) {
	f.subject = subject
	f.payload = data
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	return &nats.Msg{Subject: "_INBOX.reply", Data: f.reply}, nil
}

func testEvent() *treasury.PaymentOrderConfirmedEvent {
	order := &treasury.PaymentOrder{
		FullNumber:  "OP-00000042",
		TotalAmount: decimal.RequireFromString("1250.50"),
	}
	order.ID = uuid.New()
	order.TenantID = uuid.New()
	return treasury.NewPaymentOrderConfirmedEvent(order)
}

func testConfig() config.NATSConfig {
	return config.NATSConfig{JournalSubject: "accounting.journal.post", RequestTimeout: time.Second}
}

func TestJournalPoster_PostPaymentOrder(t *testing.T) {
	entryID := uuid.New()
	reply, _ := json.Marshal(JournalReply{JournalEntryID: &entryID})
	conn := &fakeRequester{reply: reply}
	event := testEvent()

	got, err := NewJournalPoster(conn, testConfig(), nil).PostPaymentOrder(context.Background(), event)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entryID, *got)

	assert.Equal(t, "accounting.journal.post", conn.subject)
	assert.True(t, conn.deadline, "request carries the configured timeout")

	var sent JournalRequest
	require.NoError(t, json.Unmarshal(conn.payload, &sent))
	assert.Equal(t, event.EventID(), sent.EventID)
	assert.Equal(t, event.TenantID(), sent.TenantID)
	assert.Equal(t, "OP-00000042", sent.FullNumber)
	assert.Equal(t, "1250.50", sent.TotalAmount.StringFixed(2))
}

func TestJournalPoster_NoEntryCreated(t *testing.T) {
	conn := &fakeRequester{reply: []byte(`{}`)}
	got, err := NewJournalPoster(conn, testConfig(), nil).PostPaymentOrder(context.Background(), testEvent())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestJournalPoster_Failures(t *testing.T) {
	t.Run("transport error", func(t *testing.T) {
		conn := &fakeRequester{err: nats.ErrNoResponders}
		_, err := NewJournalPoster(conn, testConfig(), nil).PostPaymentOrder(context.Background(), testEvent())
		require.ErrorIs(t, err, nats.ErrNoResponders)
	})

	t.Run("rejected by accounting", func(t *testing.T) {
		conn := &fakeRequester{reply: []byte(`{"error":"period closed"}`)}
		_, err := NewJournalPoster(conn, testConfig(), nil).PostPaymentOrder(context.Background(), testEvent())
		require.ErrorIs(t, err, ErrAccountingRejected)
		assert.Contains(t, err.Error(), "period closed")
	})

	t.Run("malformed reply", func(t *testing.T) {
		conn := &fakeRequester{reply: []byte(`not json`)}
		_, err := NewJournalPoster(conn, testConfig(), nil).PostPaymentOrder(context.Background(), testEvent())
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrAccountingRejected))
	})
}
