package scraper

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePage scripts what a single URL looks like through the Session reads.
type fakePage struct {
	nextData string
	texts    map[string]string
	attrs    map[string]string
	htmls    map[string]string
	lists    map[string][]string
}

type fakeResponse struct {
	status int
	body   string
	err    error
}

// fakeSession replays scripted pages and API responses. Responses are
// consumed in order; a Get beyond the script fails loudly so tests can pin
// the exact number of requests made.
type fakeSession struct {
	pages       map[string]*fakePage
	responses   []fakeResponse
	current     string
	navigations []string
	navErrs     map[string]error
	gets        []string
	getHeaders  []map[string]string
	evaluations []string
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		pages:   make(map[string]*fakePage),
		navErrs: make(map[string]error),
	}
}

func (f *fakeSession) page() *fakePage {
	if p, ok := f.pages[f.current]; ok {
		return p
	}
	return &fakePage{}
}

func (f *fakeSession) Navigate(_ context.Context, url string) error {
	f.navigations = append(f.navigations, url)
	if err := f.navErrs[url]; err != nil {
		return err
	}
	f.current = url
	return nil
}

func (f *fakeSession) Evaluate(script string) (any, error) {
	f.evaluations = append(f.evaluations, script)
	if strings.Contains(script, "__NEXT_DATA__") {
		if data := f.page().nextData; data != "" {
			return data, nil
		}
		return nil, nil
	}
	return nil, nil
}

func (f *fakeSession) Text(selector string) (string, bool) {
	for _, sel := range splitSelectors(selector) {
		if v, ok := f.page().texts[sel]; ok {
			return v, true
		}
	}
	return "", false
}

func (f *fakeSession) Attr(selector, name string) (string, bool) {
	v, ok := f.page().attrs[selector+"|"+name]
	return v, ok
}

func (f *fakeSession) HTML(selector string) (string, bool) {
	for _, sel := range splitSelectors(selector) {
		if v, ok := f.page().htmls[sel]; ok {
			return v, true
		}
	}
	return "", false
}

func (f *fakeSession) Texts(selector string) []string {
	for _, sel := range splitSelectors(selector) {
		if v, ok := f.page().lists[sel]; ok {
			return v
		}
	}
	return nil
}

func (f *fakeSession) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.gets = append(f.gets, url)
	f.getHeaders = append(f.getHeaders, headers)

	if len(f.responses) == 0 {
		return nil, fmt.Errorf("unscripted request: %s", url)
	}

	resp := f.responses[0]
	f.responses = f.responses[1:]
	if resp.err != nil {
		return nil, resp.err
	}
	return &Response{Status: resp.status, Body: []byte(resp.body)}, nil
}

func splitSelectors(selector string) []string {
	parts := strings.Split(selector, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func TestEmbeddedState(t *testing.T) {
	sess := newFakeSession()
	sess.pages["listing"] = &fakePage{nextData: `{"props":{}}`}
	require.NoError(t, sess.Navigate(context.Background(), "listing"))

	raw, ok := embeddedState(sess)
	assert.True(t, ok)
	assert.Equal(t, `{"props":{}}`, raw)
}

func TestEmbeddedStateMissing(t *testing.T) {
	sess := newFakeSession()
	require.NoError(t, sess.Navigate(context.Background(), "blank"))

	_, ok := embeddedState(sess)
	assert.False(t, ok)
}

func TestResponseOK(t *testing.T) {
	assert.True(t, (&Response{Status: 200}).OK())
	assert.True(t, (&Response{Status: 204}).OK())
	assert.False(t, (&Response{Status: 304}).OK())
	assert.False(t, (&Response{Status: 429}).OK())
	assert.False(t, (&Response{Status: 500}).OK())
}
