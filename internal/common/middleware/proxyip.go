package middleware

import "github.com/gofiber/fiber/v3"

// ============================================================
// Forwarded Client IP
// ============================================================

// TrustForwarded берёт IP клиента из X-Forwarded-For, но только если запрос
// пришёл от одного из proxies. Иначе c.IP() остаётся адресом соединения.
func TrustForwarded(cfg *fiber.Config, proxies []string) {
	if len(proxies) == 0 {
		return
	}
	cfg.TrustProxy = true
	cfg.TrustProxyConfig = fiber.TrustProxyConfig{Proxies: proxies}
	cfg.ProxyHeader = fiber.HeaderXForwardedFor
	cfg.EnableIPValidation = true
}
