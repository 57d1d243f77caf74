package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/core/events"
	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/native/market"
)

type capturedRequest struct {
	event     string
	signature string
	body      []byte
}

type captureServer struct {
	mu       sync.Mutex
	requests []capturedRequest
	failures int
	received chan struct{}
}

func newCaptureServer(failures int) *captureServer {
	return &captureServer{failures: failures, received: make(chan struct{}, 16)}
}

func (s *captureServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.requests = append(s.requests, capturedRequest{
			event:     r.Header.Get("X-Market-Event"),
			signature: r.Header.Get("X-Market-Signature"),
			body:      body,
		})
		fail := s.failures > 0
		if fail {
			s.failures--
		}
		s.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		s.received <- struct{}{}
	}
}

func (s *captureServer) snapshot() []capturedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]capturedRequest(nil), s.requests...)
}

func waitForDelivery(t *testing.T, s *captureServer) {
	t.Helper()
	select {
	case <-s.received:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for webhook delivery")
	}
}

func TestDispatcherDeliversSignedEvent(t *testing.T) {
	capture := newCaptureServer(0)
	server := httptest.NewServer(capture.handler())
	defer server.Close()

	secret := []byte("hook-secret")
	dispatcher, err := NewDispatcher(server.URL, secret)
	require.NoError(t, err)
	defer dispatcher.Close()

	require.NoError(t, dispatcher.Enqueue(&events.Event{
		Type: market.EventTypeSaleSold,
		Attributes: map[string]string{
			"collection": "0xc1",
			"itemId":     "dog-1",
			"price":      "100000",
		},
	}))
	waitForDelivery(t, capture)

	requests := capture.snapshot()
	require.Len(t, requests, 1)
	require.Equal(t, market.EventTypeSaleSold, requests[0].event)

	mac := hmac.New(sha256.New, secret)
	mac.Write(requests[0].body)
	require.Equal(t, "sha256="+hex.EncodeToString(mac.Sum(nil)), requests[0].signature)

	var payload EventPayload
	require.NoError(t, json.Unmarshal(requests[0].body, &payload))
	require.Equal(t, market.EventTypeSaleSold, payload.Type)
	require.Equal(t, "dog-1", payload.Attributes["itemId"])
	require.NotEmpty(t, payload.DeliveryID)
	require.False(t, payload.EmittedAt.IsZero())
}

func TestDispatcherRetriesFailedDeliveries(t *testing.T) {
	capture := newCaptureServer(2)
	server := httptest.NewServer(capture.handler())
	defer server.Close()

	dispatcher, err := NewDispatcher(server.URL, []byte("hook-secret"),
		WithRetryPolicy(5, time.Millisecond, 5*time.Millisecond))
	require.NoError(t, err)
	defer dispatcher.Close()

	require.NoError(t, dispatcher.Enqueue(&events.Event{Type: market.EventTypeSaleListed}))
	waitForDelivery(t, capture)

	require.Len(t, capture.snapshot(), 3) // two failures, then success
}

func TestDispatcherValidation(t *testing.T) {
	_, err := NewDispatcher("  ", []byte("secret"))
	require.Error(t, err)

	_, err = NewDispatcher("http://localhost:1", nil)
	require.Error(t, err)

	dispatcher, err := NewDispatcher("http://localhost:1", []byte("secret"),
		WithRetryPolicy(1, time.Millisecond, time.Millisecond))
	require.NoError(t, err)
	require.Error(t, dispatcher.Enqueue(nil))

	dispatcher.Close()
	require.Error(t, dispatcher.Enqueue(&events.Event{Type: market.EventTypeSaleListed}))
}

func TestEmitNeverPanicsOnNil(t *testing.T) {
	var dispatcher *Dispatcher
	dispatcher.Emit(&events.Event{Type: market.EventTypeSaleListed})
	dispatcher.Emit(nil)
	dispatcher.Close()
}
