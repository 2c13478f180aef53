package ws

import (
	"testing"
	"time"

	"havens-pos-service/internal/config"

	"go.uber.org/zap"
)

func configWithFastPoll() config.Config {
	return config.Config{WSKitchenPollInterval: time.Millisecond}
}

func TestKitchenRealtimeCloseStopsPolling(t *testing.T) {
	kr := newKitchenRealtime(nil, zap.NewNop(), time.Millisecond)
	kr.ensureStarted()
	kr.close()

	select {
	case <-kr.stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("poll loop did not exit after close")
	}
}

func TestKitchenRealtimeCloseIsIdempotent(t *testing.T) {
	kr := newKitchenRealtime(nil, zap.NewNop(), time.Millisecond)
	kr.close()
	kr.close()
}

func TestServerCloseStopsPolling(t *testing.T) {
	srv := New(nil, zap.NewNop(), configWithFastPoll())
	srv.kitchenRealtime.ensureStarted()
	srv.Close()

	select {
	case <-srv.kitchenRealtime.stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("poll loop did not exit after server close")
	}
}
