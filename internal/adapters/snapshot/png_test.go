package snapshot

import (
	"testing"
	"time"

	"github.com/samirrijal/territorymap/internal/adapters/svg"
)

func TestRenderer(t *testing.T) {
	r := NewRenderer(Options{})
	if r.Format() != "png" || r.ContentType() != "image/png" {
		t.Errorf("unexpected renderer %s %s", r.Format(), r.ContentType())
	}
	if r.opts.Timeout != 30*time.Second {
		t.Errorf("expected default timeout, got %s", r.opts.Timeout)
	}

	tg, ok := r.NewTarget(10, 10).(*target)
	if !ok {
		t.Fatal("expected *target")
	}
	var _ *svg.Document = tg.Document
}
