// Package snapshot rasterizes SVG documents to PNG in headless Chrome.
package snapshot

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/samirrijal/territorymap/internal/adapters/svg"
	"github.com/samirrijal/territorymap/internal/core/ports"
)

// Options configures the headless browser.
type Options struct {
	// ExecPath overrides the Chrome binary; empty uses the chromedp lookup.
	ExecPath  string
	Timeout   time.Duration
	NoSandbox bool
}

// Renderer produces PNG render targets backed by an SVG document.
type Renderer struct {
	opts Options
}

// NewRenderer creates a new Renderer.
func NewRenderer(opts Options) *Renderer {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Renderer{opts: opts}
}

func (r *Renderer) Format() string      { return "png" }
func (r *Renderer) ContentType() string { return "image/png" }

// NewTarget returns a target that screenshots its SVG on Encode.
func (r *Renderer) NewTarget(width, height float64) ports.RenderTarget {
	return &target{Document: svg.NewDocument(width, height), opts: r.opts}
}

type target struct {
	*svg.Document
	opts Options
}

func (t *target) Encode(ctx context.Context) ([]byte, error) {
	doc, err := t.Document.Encode(ctx)
	if err != nil {
		return nil, err
	}
	return Screenshot(ctx, doc, t.opts)
}

// Screenshot loads an SVG document as a data URI and returns a PNG of its root element.
func Screenshot(ctx context.Context, svgDoc []byte, opts Options) ([]byte, error) {
	dataURI := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(svgDoc)

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Headless)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.NoSandbox {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	start := time.Now()
	var buf []byte
	tasks := chromedp.Tasks{
		chromedp.Navigate(dataURI),
		chromedp.WaitVisible(`svg`, chromedp.ByQuery),
		chromedp.Screenshot(`svg`, &buf, chromedp.ByQuery),
	}
	if err := chromedp.Run(browserCtx, tasks); err != nil {
		return nil, fmt.Errorf("chromedp: %w", err)
	}
	if len(buf) == 0 {
		return nil, fmt.Errorf("chromedp: empty screenshot")
	}
	slog.DebugContext(ctx, "snapshot rendered", "bytes", len(buf), "duration", time.Since(start).String())
	return buf, nil
}
