package observability

import (
	"context"
	"testing"

	"github.com/suitewell/suitewell-backend/internal/logger"
)

func TestInitOTelDisabledReturnsCallableShutdown(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "")

	shutdown := InitOTel(context.Background(), logger.NewNop(), OtelConfig{
		ServiceName: "suitewell-backend",
	})
	if shutdown == nil {
		t.Fatal("shutdown func is nil with tracing disabled")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
