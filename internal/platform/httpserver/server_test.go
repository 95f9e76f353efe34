package httpserver

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digipin/internal/platform/logger"
)

func TestRun(t *testing.T) {
	t.Run("stops cleanly when the context ends", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		srv := New("127.0.0.1:0", http.NotFoundHandler())
		done := make(chan error, 1)
		go func() { done <- Run(ctx, srv, time.Second, logger.Discard()) }()

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop")
		}
	})

	t.Run("reports a listen failure", func(t *testing.T) {
		err := Run(context.Background(), New("256.0.0.1:bad", http.NotFoundHandler()), time.Second, logger.Discard())
		require.Error(t, err)
	})
}
