package proxy

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Proxy Handler
// ============================================================

// forwardedHeaders: заголовки запроса, которые уходят в апстрим.
var forwardedHeaders = []string{"Content-Type", "Accept", "If-None-Match", "Authorization"}

// hopHeaders не копируются из ответа апстрима.
var hopHeaders = map[string]bool{
	"Connection":        true,
	"Keep-Alive":        true,
	"Transfer-Encoding": true,
	"Content-Length":    true,
	"Upgrade":           true,
}

type Forwarder struct {
	base   string
	client *http.Client
}

func New(base string) *Forwarder {
	return &Forwarder{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: 2 * time.Minute},
	}
}

// Handler проксирует путь и query как есть: /api/projects/1?x=y -> base/api/projects/1?x=y.
func (f *Forwarder) Handler() fiber.Handler {
	return func(c fiber.Ctx) error {
		return f.forward(c, f.base+c.OriginalURL())
	}
}

// Ping проверяет апстрим через /health/live.
func (f *Forwarder) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.base+"/health/live", nil)
	if err != nil {
		return err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &upstreamError{status: resp.Status}
	}
	return nil
}

func (f *Forwarder) forward(c fiber.Ctx, targetURL string) error {
	log.Printf("[PROXY] %s %s -> %s", c.Method(), c.Path(), targetURL)

	var body io.Reader
	if len(c.Body()) > 0 {
		body = bytes.NewReader(c.Body())
	}
	req, err := http.NewRequestWithContext(c.Context(), c.Method(), targetURL, body)
	if err != nil {
		log.Printf("[PROXY] build request error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "proxy failed"})
	}
	for _, h := range forwardedHeaders {
		if v := c.Get(h); v != "" {
			req.Header.Set(h, v)
		}
	}
	req.Header.Set("X-Forwarded-For", c.IP())

	resp, err := f.client.Do(req)
	if err != nil {
		log.Printf("[PROXY] Error: %v", err)
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "failed to reach upstream service"})
	}
	defer resp.Body.Close()

	return copyResponse(c, resp)
}

func copyResponse(c fiber.Ctx, resp *http.Response) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[PROXY] Read response error: %v", err)
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "invalid upstream response"})
	}

	for key, values := range resp.Header {
		if hopHeaders[key] || len(values) == 0 {
			continue
		}
		c.Set(key, values[0])
	}

	c.Status(resp.StatusCode)
	return c.Send(data)
}

type upstreamError struct {
	status string
}

func (e *upstreamError) Error() string {
	return "upstream responded " + e.status
}
