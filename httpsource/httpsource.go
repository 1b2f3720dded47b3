// Package httpsource implements promidas.Source over HTTP. It issues
// paginated GET requests (offset/limit and an optional id filter as query
// parameters) against a prototype collection endpoint and decodes the
// response body into records. Transient transport failures are retried via
// hashicorp/go-retryablehttp; every failure mode is surfaced to the caller
// as a *promidas.FetchError value.
package httpsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	promidas "github.com/F88/promidas-sub002"
	c "github.com/F88/promidas-sub002/codec"
)

const (
	// codeHTTPStatus is the machine code attached to non-2xx responses.
	codeHTTPStatus = "http_status"
	// codeDecode is the machine code attached to undecodable bodies.
	codeDecode = "decode"
)

// Client fetches prototype collections from a single HTTP endpoint.
type Client[V any] struct {
	url    *url.URL
	client *retryablehttp.Client
	dec    c.Codec[[]V]
	header http.Header
}

var _ promidas.Source[struct{}] = (*Client[struct{}])(nil)

// New builds a Client for srcURL. If rc is nil a default retrying client
// with silenced logging is used. If dec is nil the response body is decoded
// as a JSON array of V.
func New[V any](srcURL string, rc *retryablehttp.Client, dec c.Codec[[]V]) (*Client[V], error) {
	u, err := url.Parse(srcURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("httpsource: url must have http or https scheme: %s", srcURL)
	}

	if rc == nil {
		rc = retryablehttp.NewClient()
		rc.Logger = nil
	}
	if dec == nil {
		dec = c.JSON[[]V]{}
	}

	return &Client[V]{
		url:    u,
		client: rc,
		dec:    dec,
	}, nil
}

// AddHeader adds a header (e.g. authorization) sent with every request.
func (s *Client[V]) AddHeader(key, value string) {
	if s.header == nil {
		s.header = make(http.Header)
	}
	s.header.Add(key, value)
}

// Fetch performs one paginated GET and decodes the body into records.
// All failures are returned as *promidas.FetchError.
func (s *Client[V]) Fetch(ctx context.Context, params promidas.FetchParams) ([]V, error) {
	u := *s.url
	q := u.Query()
	q.Set("offset", strconv.Itoa(params.Offset))
	q.Set("limit", strconv.Itoa(params.Limit))
	if len(params.IDs) > 0 {
		ids := make([]string, len(params.IDs))
		for i, id := range params.IDs {
			ids[i] = strconv.FormatInt(id, 10)
		}
		q.Set("ids", strings.Join(ids, ","))
	}
	u.RawQuery = q.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, promidas.NewFetchError(err, 0, promidas.KindProtocol, "")
	}
	for key, vals := range s.header {
		for _, val := range vals {
			req.Header.Add(key, val)
		}
	}
	req.Header.Add("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}

	if resp.StatusCode != http.StatusOK {
		var cause error
		if text := strings.TrimSpace(string(body)); text != "" {
			cause = errors.New(text)
		}
		return nil, promidas.NewFetchError(cause, resp.StatusCode, promidas.KindProtocol, codeHTTPStatus)
	}

	records, err := s.dec.Decode(body)
	if err != nil {
		return nil, promidas.NewFetchError(err, 0, promidas.KindProtocol, codeDecode)
	}
	return records, nil
}

func (s *Client[V]) String() string {
	return s.url.String()
}

// transportError classifies a transport-level failure.
func transportError(err error) *promidas.FetchError {
	kind := promidas.KindNetwork
	var nerr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		kind = promidas.KindAbort
	case errors.Is(err, context.DeadlineExceeded):
		kind = promidas.KindTimeout
	case errors.As(err, &nerr) && nerr.Timeout():
		kind = promidas.KindTimeout
	}
	return promidas.NewFetchError(err, 0, kind, "")
}
