// redact маскирует чувствительные значения перед логированием.
package redact

import "strings"

// Email оставляет первые два символа локальной части и домен.
func Email(s string) string {
	local, domain, ok := strings.Cut(s, "@")
	if !ok || domain == "" || strings.Contains(domain, "@") {
		return "***"
	}

	if len(local) > 2 {
		local = local[:2] + "***"
	} else {
		local = "***"
	}

	return local + "@" + domain
}

// SessionID оставляет короткий префикс идентификатора сессии для корреляции логов.
func SessionID(id string) string {
	if len(id) <= 6 {
		return "***"
	}

	return id[:6] + "***"
}

func Token() string    { return "[REDACTED_TOKEN]" }
func Password() string { return "[REDACTED_PASSWORD]" }
