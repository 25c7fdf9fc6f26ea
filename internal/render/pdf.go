// Package render converts rendered HTML into PDF bytes by driving a
// headless Chrome instance.
package render

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

// PDFRenderer rasterizes HTML documents to Letter-sized PDFs.
//
// Each render gets its own Chrome process so a crashed or wedged page can
// never poison another request. A semaphore bounds how many of those
// processes exist at once, and a hard timeout tears the browser down if a
// render hangs. Context cancellation kills the process on every exit path,
// success or failure.
type PDFRenderer struct {
	chromePath string
	timeout    time.Duration
	sem        chan struct{}
	log        logrus.FieldLogger
}

// NewPDFRenderer creates a renderer. chromePath may be empty, in which case
// chromedp locates a Chrome or Chromium binary on PATH. workers caps
// concurrent browser processes; values below 1 mean one at a time.
func NewPDFRenderer(chromePath string, timeout time.Duration, workers int, logger logrus.FieldLogger) *PDFRenderer {
	if workers < 1 {
		workers = 1
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PDFRenderer{
		chromePath: chromePath,
		timeout:    timeout,
		sem:        make(chan struct{}, workers),
		log:        logger.WithField("component", "render"),
	}
}

// RenderPDF loads the HTML into a fresh headless browser, waits for the
// load event and exports a PDF with print backgrounds enabled.
func (r *PDFRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	select {
	case r.sem <- struct{}{}:
		defer func() { <-r.sem }()
	case <-ctx.Done():
		return nil, fmt.Errorf("render queue wait cancelled: %w", ctx.Err())
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true), // Required for systemd/Docker
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-software-rasterizer", true),
	)
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	// The timeout covers launch, load and export together
	browserCtx, timeoutCancel := context.WithTimeout(browserCtx, r.timeout)
	defer timeoutCancel()

	start := time.Now()
	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPaperWidth(8.5).
				WithPaperHeight(11).
				WithMarginTop(0.4).
				WithMarginBottom(0.4).
				WithMarginLeft(0.4).
				WithMarginRight(0.4).
				WithPrintBackground(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		r.log.WithError(err).Error("PDF render failed")
		return nil, fmt.Errorf("pdf render failed: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"bytes":       len(pdf),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("PDF rendered")
	return pdf, nil
}

// Filename returns the suggested download name for a listing's flyer.
func Filename(listingID string) string {
	id := sanitizeID(listingID)
	if id == "" {
		return "listing.pdf"
	}
	return "listing-" + id + ".pdf"
}

// sanitizeID keeps only characters that are safe in a filename.
func sanitizeID(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}
