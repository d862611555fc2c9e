package analyzer

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/net/idna"
)

// DisplayHost returns the host of rawURL without a leading "www.".
// Internationalized hosts are converted to their Unicode form.
// An unparsable URL yields an empty host.
func DisplayHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	if unicodeHost, err := idna.Display.ToUnicode(host); err == nil {
		host = unicodeHost
	}
	return host
}

// TimeAgo returns how long before now the visit happened, e.g. "3 days ago".
func TimeAgo(visited, now time.Time) string {
	return humanize.RelTime(visited, now, "ago", "from now")
}

// searchAnnotation builds the annotation of a top-level node.
// repeat is the 1-based position of the visit among the visits of its search.
func searchAnnotation(host, ago string, repeat int) string {
	annotation := "@ " + host + " " + ago
	if repeat > 1 {
		annotation += fmt.Sprintf(" (repeat %d)", repeat)
	}
	return annotation
}

// clickAnnotation builds the annotation of a trail node.
// click is the 1-based position of the node among its visible siblings.
func clickAnnotation(click int) string {
	if click > 1 {
		return fmt.Sprintf("(click %d)", click)
	}
	return ""
}
