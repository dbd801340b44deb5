package sidebars

import (
	"strings"

	masker "github.com/goliatone/go-masker"
)

const maskType = "preserveEnds(2,2)"

var sensitiveSettingKeys = []string{
	"token", "access_token", "api_key", "apikey", "apiKey",
	"client_secret", "secret", "password", "webhook_url",
	"email", "site_key",
}

func init() {
	for _, field := range sensitiveSettingKeys {
		masker.Default.RegisterMaskField(field, maskType)
	}
}

// MaskSettings returns a copy of widget settings that is safe to log.
// Values stored under sensitive keys are masked at any depth.
func MaskSettings(settings map[string]any) map[string]any {
	if len(settings) == 0 {
		return nil
	}
	out := make(map[string]any, len(settings))
	for key, value := range settings {
		switch v := value.(type) {
		case map[string]any:
			out[key] = MaskSettings(v)
		case string:
			if isSensitive(key) {
				out[key] = maskString(v)
			} else {
				out[key] = v
			}
		default:
			if isSensitive(key) && v != nil {
				out[key] = "****"
			} else {
				out[key] = v
			}
		}
	}
	return out
}

func isSensitive(key string) bool {
	for _, candidate := range sensitiveSettingKeys {
		if strings.EqualFold(candidate, key) {
			return true
		}
	}
	return false
}

func maskString(value string) string {
	if value == "" {
		return ""
	}
	if masked, err := masker.Default.String(maskType, value); err == nil && masked != value {
		return masked
	}
	runes := []rune(value)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:2]) + strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-2:])
}
