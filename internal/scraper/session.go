package scraper

import (
	"context"
	"errors"
	"fmt"
)

// ErrSnapshotMissing is the pipeline's only fatal error: without the embedded
// state snapshot on the listing page there is nothing to harvest.
var ErrSnapshotMissing = errors.New("embedded state snapshot not found on listing page")

// Session is the browser capability the pipeline drives: navigation, script
// evaluation, DOM reads and cookie-sharing HTTP requests. Optional DOM reads
// report absence through the ok return instead of an error, so a missing
// element is visible in the signature rather than swallowed.
type Session interface {
	Navigate(ctx context.Context, url string) error
	Evaluate(script string) (any, error)
	Text(selector string) (string, bool)
	Attr(selector, name string) (string, bool)
	HTML(selector string) (string, bool)
	Texts(selector string) []string
	Get(ctx context.Context, url string, headers map[string]string) (*Response, error)
}

// Response is the outcome of one authenticated API request issued through
// the browser session's cookie jar.
type Response struct {
	Status int
	Body   []byte
}

func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

const embeddedStateScript = `() => {
	const el = document.getElementById('__NEXT_DATA__');
	return el ? el.textContent : null;
}`

// embeddedState reads the server-rendered application state serialized into
// the current page's markup.
func embeddedState(sess Session) (string, bool) {
	raw, err := sess.Evaluate(embeddedStateScript)
	if err != nil {
		return "", false
	}

	payload, ok := raw.(string)
	if !ok || payload == "" {
		return "", false
	}

	return payload, true
}

func scrollTo(sess Session, fraction float64) {
	script := fmt.Sprintf("window.scrollTo(0, document.body.scrollHeight * %g)", fraction)
	if _, err := sess.Evaluate(script); err != nil {
		// Scrolling is best-effort; lazy content simply stays unloaded.
		return
	}
}
