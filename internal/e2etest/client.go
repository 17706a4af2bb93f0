package e2etest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// StatusError is returned when the server responds with an unexpected status code.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

type Client struct {
	client *http.Client
	url    string
}

// NewClient creates an HTTP client that keeps the session cookie between requests.
func NewClient(url string) (*Client, error) {
	jar, err := newUnsafeCookieJar()
	if err != nil {
		return nil, fmt.Errorf("create unsafe cookie jar: %w", err)
	}
	return &Client{
		client: &http.Client{Jar: jar}, //nolint:exhaustruct // defaults are fine.
		url:    url,
	}, nil
}

const (
	readyTimeout      = 5 * time.Second
	readyPollInterval = 100 * time.Millisecond
)

// WaitForReady polls urlPath until it answers 200 OK. It gives up after readyTimeout or when ctx is done.
func (c *Client) WaitForReady(ctx context.Context, urlPath string) error {
	ctx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()
	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		resp, err := c.Get(ctx, urlPath)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
			err = &StatusError{StatusCode: resp.StatusCode, Body: ""}
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s not ready: %w", urlPath, errors.Join(ctx.Err(), lastErr))
		case <-ticker.C:
		}
	}
}

// Get fetches a URL and returns the response.
func (c *Client) Get(ctx context.Context, urlPath string) (*http.Response, error) {
	req, err := c.newRequestWithContext(ctx, http.MethodGet, urlPath, nil)
	if err != nil {
		return nil, fmt.Errorf("create request with context: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	return resp, nil
}

// GetDoc fetches a URL and returns a goquery document.
func (c *Client) GetDoc(ctx context.Context, urlPath string) (*goquery.Document, error) {
	resp, err := c.Get(ctx, urlPath)
	if err != nil {
		return nil, fmt.Errorf("client get: %w", err)
	}
	return readDoc(resp)
}

// readDoc parses the response body and closes it. Non-200 responses become a *StatusError.
func readDoc(resp *http.Response) (*goquery.Document, error) {
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("create document from reader: %w", err)
	}
	doc.Url = resp.Request.URL
	return doc, nil
}

// newRequestWithContext creates a new HTTP request to the server that respects the given context.
func (c *Client) newRequestWithContext(
	ctx context.Context,
	method, urlPath string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url+urlPath, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return req, nil
}

// CreateAccount turns the client's session into a free account and returns the front page document.
func (c *Client) CreateAccount(ctx context.Context) (*goquery.Document, error) {
	doc, err := c.GetDoc(ctx, "/")
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	if doc, err = c.SubmitForm(ctx, doc, "/api/account", nil); err != nil {
		return nil, fmt.Errorf("submit form: %w", err)
	}
	return doc, nil
}

// Logout destroys the session and returns the front page document.
func (c *Client) Logout(ctx context.Context) (*goquery.Document, error) {
	doc, err := c.GetDoc(ctx, "/")
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	if doc, err = c.SubmitForm(ctx, doc, "/api/logout", nil); err != nil {
		return nil, fmt.Errorf("submit form: %w", err)
	}
	return doc, nil
}

// SubmitForm submits a form in the doc identified with action formActionUrlPath and returns the response document.
// formFields is a map of label text to value. The function will find the input or select by label and set its
// value. Inputs without a label in formFields keep the value attribute from the document, except for unchecked
// checkboxes.
func (c *Client) SubmitForm(
	ctx context.Context,
	doc *goquery.Document,
	formActionURLPath string,
	formFields map[string]string,
) (*goquery.Document, error) {
	form, err := FindForm(doc, formActionURLPath)
	if err != nil {
		return nil, fmt.Errorf("find form: %w", err)
	}

	formData := neturl.Values{}
	overridden := map[string]bool{}
	for labelText, value := range formFields {
		var input *goquery.Selection
		if input, err = FindInputForLabel(form, labelText); err != nil {
			return nil, fmt.Errorf("find input for label: %w", err)
		}

		name, exists := input.Attr("name")
		if !exists {
			return nil, fmt.Errorf("input has no name attribute (label: %s, form_action: %s)",
				labelText, formActionURLPath)
		}

		if inputType, _ := input.Attr("type"); inputType == "checkbox" {
			if value != "" {
				checked, ok := input.Attr("value")
				if !ok {
					checked = "on"
				}
				formData.Add(name, checked)
			}
			continue
		}
		overridden[name] = true
		formData.Set(name, value)
	}
	form.Find("input[name]").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		inputType, _ := s.Attr("type")
		if overridden[name] || inputType == "checkbox" {
			return
		}
		if value, ok := s.Attr("value"); ok {
			formData.Set(name, value)
		}
	})
	form.Find("select[name]").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		if overridden[name] {
			return
		}
		option := s.Find("option[selected]").First()
		if option.Length() == 0 {
			option = s.Find("option").First()
		}
		if value, ok := option.Attr("value"); ok {
			formData.Set(name, value)
		}
	})

	req, err := c.newRequestWithContext(ctx, http.MethodPost, formActionURLPath,
		strings.NewReader(formData.Encode()))
	if err != nil {
		return nil, fmt.Errorf("new request with context: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	return readDoc(resp)
}

// PostJSON posts body as JSON and decodes the response into out. The status code is returned for every response
// that could be decoded.
func (c *Client) PostJSON(ctx context.Context, urlPath string, body any, out any) (int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("marshal body: %w", err)
	}
	req, err := c.newRequestWithContext(ctx, http.MethodPost, urlPath, bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("new request with context: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req, out)
}

// GetJSON fetches urlPath and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, urlPath string, out any) (int, error) {
	req, err := c.newRequestWithContext(ctx, http.MethodGet, urlPath, nil)
	if err != nil {
		return 0, fmt.Errorf("new request with context: %w", err)
	}
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out any) (int, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

// headerTransport adds fixed headers to every request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("round trip: %w", err)
	}
	return resp, nil
}

// WithHeaders returns a client sharing the session of c that sends headers with every request. Use it to simulate
// browser fetch metadata such as Sec-Fetch-Site.
func (c *Client) WithHeaders(headers map[string]string) *Client {
	return &Client{
		client: &http.Client{ //nolint:exhaustruct // defaults are fine.
			Jar:       c.client.Jar,
			Transport: &headerTransport{base: http.DefaultTransport, headers: headers},
		},
		url: c.url,
	}
}
