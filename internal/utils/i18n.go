package utils

// Minimal server-side i18n for fixed keys.
// UI strings live in the mobile client; the server provides only essentials.

var translations = map[string]map[string]string{
	"en": {
		"health.ok":  "ok",
		"metric.due": "Testing due",
		"risk.low":   "Low",
		"risk.mod":   "Moderate",
		"risk.high":  "High",
		"risk.vhigh": "Very High",
		"risk.base":  "Baseline",
	},
	"es": {
		"health.ok":  "bien",
		"metric.due": "Prueba pendiente",
		"risk.low":   "Bajo",
		"risk.mod":   "Moderado",
		"risk.high":  "Alto",
		"risk.vhigh": "Muy alto",
		"risk.base":  "Base",
	},
}

// T returns the translated string for key in locale; falls back to English.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if m, ok := translations["en"]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}
