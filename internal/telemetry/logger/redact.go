package logger

import (
	"log/slog"
	"strings"
)

// Key fragments that mark an attribute as a credential.
var sensitiveKeyPatterns = []string{
	"password",
	"token",
	"secret",
	"authorization",
	"credential",
	"bearer",
}

const redactedValue = "***REDACTED***"

// jwtPrefix is how every base64url-encoded JSON header starts. The service
// issues JWTs, so such values are masked wherever they appear.
const jwtPrefix = "eyJ"

func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		v := a.Value.String()
		if IsSensitiveValue(v) {
			return slog.String(a.Key, RedactString(v))
		}
		if v != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

// RedactString masks a bearer credential, keeping a short hint.
// Values that do not look like credentials are returned unchanged.
func RedactString(value string) string {
	if strings.HasPrefix(value, "Bearer ") {
		return "Bearer " + RedactString(strings.TrimPrefix(value, "Bearer "))
	}
	if !IsSensitiveValue(value) {
		return value
	}
	if len(value) <= len(jwtPrefix)+6 {
		return jwtPrefix + "***"
	}
	return jwtPrefix + "***..." + value[len(value)-3:]
}

// IsSensitiveKey reports whether a key name suggests a credential.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, p := range sensitiveKeyPatterns {
		if strings.Contains(k, p) {
			return true
		}
	}
	return false
}

// IsSensitiveValue reports whether a value looks like a JWT, bare or as a
// bearer header.
func IsSensitiveValue(value string) bool {
	value = strings.TrimPrefix(value, "Bearer ")
	return strings.HasPrefix(value, jwtPrefix) && strings.Count(value, ".") == 2
}
