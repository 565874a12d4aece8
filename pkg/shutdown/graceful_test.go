package shutdown

import (
	"context"
	"io"
	"log/slog"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestWithSignals_CancelReleasesWatcher(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := WithSignals(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	cancel()
	<-ctx.Done()
	time.Sleep(10 * time.Millisecond)
}

func TestWithSignals_SignalCancels(t *testing.T) {
	ctx, cancel := WithSignals(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer cancel()

	assert.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled by SIGTERM")
	}
}
