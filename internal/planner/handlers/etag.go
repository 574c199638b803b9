package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gowebpki/jcs"
)

// ============================================================
// ETag
// ============================================================

// ETag считает sha256 канонического JSON (RFC 8785), так что порядок ключей
// и форматирование чисел не влияют на тег.
func ETag(body []byte) (string, error) {
	canonical, err := jcs.Transform(body)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return `"` + hex.EncodeToString(sum[:]) + `"`, nil
}

// sendJSON отдаёт JSON с ETag и отвечает 304 на совпавший If-None-Match.
func sendJSON(c fiber.Ctx, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return writeError(c, err)
	}
	tag, err := ETag(body)
	if err != nil {
		return writeError(c, err)
	}

	c.Set("ETag", tag)
	if matches(c.Get("If-None-Match"), tag) {
		return c.SendStatus(http.StatusNotModified)
	}
	c.Set("Content-Type", "application/json")
	return c.Send(body)
}

func matches(header, tag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimPrefix(candidate, "W/")
		if candidate == "*" || candidate == tag {
			return true
		}
	}
	return false
}
