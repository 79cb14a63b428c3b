// Package fetcher retrieves business websites politely: rotating user
// agents, bounded retries with backoff, and a single insecure retry for
// broken certificate chains.
package fetcher

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"leadblitz/internal/domain"
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:123.0) Gecko/20100101 Firefox/123.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
}

const maxBodyBytes = 2 << 20

// Fetcher holds the shared clients. Sleep is injectable so retry tests run
// instantly. The semaphore caps in-flight network fetches across every
// caller sharing this instance.
type Fetcher struct {
	client   *http.Client
	insecure *http.Client
	retries  int
	sem      *semaphore.Weighted
	sleep    func(time.Duration)
}

func New(timeout time.Duration, retries, maxFetches int) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if retries <= 0 {
		retries = 3
	}
	if maxFetches <= 0 {
		maxFetches = 10
	}
	base := &http.Transport{
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	insecureTr := base.Clone()
	insecureTr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout, Transport: base},
		insecure: &http.Client{Timeout: timeout, Transport: insecureTr},
		retries:  retries,
		sem:      semaphore.NewWeighted(int64(maxFetches)),
		sleep:    time.Sleep,
	}
}

// FetchPage downloads one URL. The result always comes back; failures are
// recorded in Errors and an empty HTML body.
func (f *Fetcher) FetchPage(ctx context.Context, rawURL string) domain.FetchResult {
	res := domain.FetchResult{FinalURL: rawURL}
	if err := f.sem.Acquire(ctx, 1); err != nil {
		res.Errors = append(res.Errors, "fetch canceled: "+err.Error())
		return res
	}
	defer f.sem.Release(1)

	acceptEncoding := true
	insecure := false

	for attempt := 0; attempt < f.retries; attempt++ {
		res.Retries = attempt
		status, html, finalURL, err := f.do(ctx, rawURL, attempt, acceptEncoding, insecure)
		if err != nil {
			switch {
			case isTLSError(err) && !insecure:
				res.Errors = append(res.Errors, "SSL warning (insecure): "+err.Error())
				res.Insecure = true
				insecure = true
				continue
			case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
				res.Errors = append(res.Errors, "fetch canceled: "+err.Error())
				return res
			case isRetryableNetErr(err):
				res.Errors = append(res.Errors, "connection error: "+err.Error())
				f.sleep(time.Duration(1+attempt) * time.Second)
				continue
			default:
				res.Errors = append(res.Errors, "fetch error: "+err.Error())
				return res
			}
		}
		res.Status = status
		if finalURL != "" {
			res.FinalURL = finalURL
		}

		switch {
		case status == 200 || status == 202:
			if acceptEncoding && looksGarbled(html) {
				// Some servers mislabel compressed bodies. One retry with
				// encoding negotiation off.
				res.Errors = append(res.Errors, "garbled response body, retrying without compression")
				acceptEncoding = false
				continue
			}
			res.HTML = html
			return res
		case status == 401 || status == 403:
			res.Errors = append(res.Errors, fmt.Sprintf("HTTP %d (blocked)", status))
			return res
		case status == 429 || status == 503:
			res.Errors = append(res.Errors, fmt.Sprintf("HTTP %d, backing off", status))
			backoff := time.Duration(1<<attempt) * time.Second
			jitter := time.Duration((0.5 + rand.Float64()) * float64(time.Second))
			f.sleep(backoff + jitter)
			continue
		default:
			res.Errors = append(res.Errors, fmt.Sprintf("HTTP %d", status))
			return res
		}
	}

	zap.L().Debug("fetch exhausted retries", zap.String("url", rawURL), zap.Int("retries", f.retries))
	return res
}

func (f *Fetcher) do(ctx context.Context, rawURL string, attempt int, acceptEncoding, insecure bool) (int, string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, "", "", err
	}
	req.Header.Set("User-Agent", userAgents[attempt%len(userAgents)])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if !acceptEncoding {
		// Disables transparent gzip so we see the raw body.
		req.Header.Set("Accept-Encoding", "identity")
	}

	client := f.client
	if insecure {
		client = f.insecure
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, "", "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, "", resp.Request.URL.String(), err
	}
	return resp.StatusCode, string(body), resp.Request.URL.String(), nil
}

// looksGarbled reports whether the first 500 bytes carry more than 20
// control characters, which almost always means a mislabeled compressed
// body.
func looksGarbled(s string) bool {
	if len(s) > 500 {
		s = s[:500]
	}
	n := 0
	for _, b := range []byte(s) {
		if b < 32 && b != '\n' && b != '\r' && b != '\t' {
			n++
			if n > 20 {
				return true
			}
		}
	}
	return false
}

func isTLSError(err error) bool {
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "x509:") || strings.Contains(msg, "tls:")
}

func isRetryableNetErr(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
