package render

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}

// chromeAvailable reports whether any usable Chrome binary is on PATH.
func chromeAvailable() bool {
	for _, name := range []string{
		"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell",
	} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}

func TestRenderPDF(t *testing.T) {
	if !chromeAvailable() {
		t.Skip("no Chrome binary on PATH")
	}

	r := NewPDFRenderer("", 30*time.Second, 1, testLogger())
	pdf, err := r.RenderPDF(context.Background(),
		`<!DOCTYPE html><html><body><h1>Cozy Bungalow</h1><p>350000</p></body></html>`)
	require.NoError(t, err)

	assert.Greater(t, len(pdf), 1024, "A rendered page should exceed a trivial byte threshold")
	assert.Equal(t, "%PDF-", string(pdf[:5]), "Output should be a PDF byte stream")
}

func TestRenderPDF_LaunchFailureSurfaces(t *testing.T) {
	// A bogus binary path makes the launch fail; the renderer must return
	// an error quickly instead of a partial document, and the deferred
	// cancels mean nothing is left running.
	r := NewPDFRenderer("/nonexistent/chrome-binary", 10*time.Second, 1, testLogger())

	start := time.Now()
	pdf, err := r.RenderPDF(context.Background(), "<html><body>x</body></html>")
	assert.Error(t, err)
	assert.Nil(t, pdf)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestRenderPDF_HonorsCallerCancellation(t *testing.T) {
	r := NewPDFRenderer("", 30*time.Second, 1, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Saturate the semaphore so the call parks on queue wait
	r.sem <- struct{}{}
	defer func() { <-r.sem }()

	_, err := r.RenderPDF(ctx, "<html></html>")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "listing-abc123.pdf", Filename("abc123"))
	assert.Equal(t, "listing.pdf", Filename(""))
	assert.Equal(t, "listing-ab12.pdf", Filename("a/b 1?2"), "Unsafe characters are stripped")
}
