package flyer

import (
	"encoding/base64"
	"html/template"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// blobPrefix is the retrieval path of the local blob store. Only references
// under it are inlined; everything else is dropped so the print renderer
// never depends on a network fetch.
const blobPrefix = "/uploads/"

// formatMoney renders a raw price as localized currency when it parses as a
// plain number. Values that already carry currency or grouping symbols, or
// that do not parse at all ("N/A", "Call for price"), pass through as-is.
func formatMoney(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, "$€£¥,") {
		return raw
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return raw
	}
	return "$" + groupThousands(int64(math.Round(f)))
}

// formatGrouped renders a raw numeric string with thousands separators under
// the same parse-or-passthrough rule as formatMoney.
func formatGrouped(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if strings.Contains(s, ",") {
		return raw
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return raw
	}
	return groupThousands(int64(math.Round(f)))
}

// groupThousands inserts commas into a decimal integer.
func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// inlineImage turns a blob-store reference into a base64 data URI. External
// URLs, empty references and unreadable files all yield an empty URL, which
// the templates treat as "no image".
func (r *Renderer) inlineImage(ref string) template.URL {
	if !strings.HasPrefix(ref, blobPrefix) {
		return ""
	}

	// Base strips any path traversal out of the reference.
	name := filepath.Base(strings.TrimPrefix(ref, blobPrefix))
	data, err := os.ReadFile(filepath.Join(r.uploadsDir, name))
	if err != nil {
		return ""
	}

	mimeType := "image/jpeg"
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		mimeType = "image/png"
	case ".webp":
		mimeType = "image/webp"
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	return template.URL("data:" + mimeType + ";base64," + encoded)
}
