package gateway

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/electrozone/backend/pkg/metrics"
)

// forwardedHeaders are the only request headers the proxy carries to the
// upstream besides Content-Type.
var forwardedHeaders = []string{"Authorization", "Cookie", "Content-Type"}

// Proxy forwards requests to one named upstream and re-emits the upstream
// status and body verbatim. Only transport failures produce a gateway-owned
// response.
type Proxy struct {
	upstream string
	baseURL  string
	client   *http.Client
}

func NewProxy(upstream, baseURL string) *Proxy {
	return &Proxy{
		upstream: upstream,
		baseURL:  baseURL,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Forward sends the incoming request to the upstream at the given path and
// copies the response through unchanged.
func (p *Proxy) Forward(w http.ResponseWriter, r *http.Request, path string) {
	status, body, contentType, err := p.roundTrip(r, path, r.Body)
	if err != nil {
		p.respondUnavailable(w, err)
		return
	}

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// roundTrip performs the upstream exchange and returns the raw response.
// Callers that rewrite the request or response body use this instead of
// Forward and pass their own reqBody.
func (p *Proxy) roundTrip(r *http.Request, path string, reqBody io.Reader) (status int, body []byte, contentType string, err error) {
	url := p.baseURL + path
	if r.URL.RawQuery != "" {
		url += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, url, reqBody)
	if err != nil {
		return 0, nil, "", fmt.Errorf("gateway: failed to build upstream request: %w", err)
	}
	for _, h := range forwardedHeaders {
		if v := r.Header.Get(h); v != "" {
			req.Header.Set(h, v)
		}
	}

	start := time.Now()
	res, err := p.client.Do(req)
	metrics.ProxyUpstreamLatency.WithLabelValues(p.upstream).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProxyRequests.WithLabelValues(p.upstream, "error").Inc()
		return 0, nil, "", fmt.Errorf("gateway: request to %s failed: %w", p.upstream, err)
	}
	defer res.Body.Close()

	metrics.ProxyRequests.WithLabelValues(p.upstream, strconv.Itoa(res.StatusCode)).Inc()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return 0, nil, "", fmt.Errorf("gateway: failed to read %s response: %w", p.upstream, err)
	}

	return res.StatusCode, resBody, res.Header.Get("Content-Type"), nil
}

// respondUnavailable is the only error shape the gateway emits on its own
// behalf.
func (p *Proxy) respondUnavailable(w http.ResponseWriter, err error) {
	log.Error().Err(err).Str("upstream", p.upstream).Msg("gateway: upstream unreachable")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"message": fmt.Sprintf("proxy to %s failed", p.upstream),
	})
}
