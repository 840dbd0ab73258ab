package source

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
)

// roundTripper lets net/http based clients (go-github, oauth2) send their
// requests through a transport.Transport, so every source shares the same
// collaborator and test doubles see GitHub traffic too.
type roundTripper struct {
	f    *Fetcher
	desc string
}

func (rt *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return nil, fmt.Errorf("unsupported method %s", req.Method)
	}
	url := req.URL.String()

	rt.f.logger.Debug("request", "source", rt.desc, "url", url)
	resp, err := rt.f.transport.Get(req.Context(), url, req.Header)
	if err != nil {
		rt.f.logger.Debug("request failed", "source", rt.desc, "url", url, "error", err)
		return nil, err
	}
	rt.f.logger.Debug("response", "source", rt.desc, "url", url, "status", resp.StatusCode)

	header := resp.Header
	if header == nil {
		header = make(http.Header)
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		StatusCode:    resp.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(resp.Body)),
		ContentLength: int64(len(resp.Body)),
		Request:       req,
	}, nil
}
