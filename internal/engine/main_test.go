package engine

import (
	"os"
	"testing"

	"github.com/stakelens/stakesync/internal/observability/metrics"
)

func TestMain(m *testing.M) {
	metrics.Init(19511)
	os.Exit(m.Run())
}
