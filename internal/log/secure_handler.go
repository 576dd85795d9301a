package log

import (
	"cmp"
	"context"
	"io"
	"log/slog"
	"regexp"
	"slices"
	"strings"
)

// sensitiveKeys contains attribute keys that should always be sanitized.
var sensitiveKeys = map[string]bool{
	// Authentication
	"password":      true,
	"passwd":        true,
	"secret":        true,
	"token":         true,
	"api_key":       true,
	"apikey":        true,
	"api-key":       true,
	"access_token":  true,
	"refresh_token": true,
	"private_key":   true,
	"privatekey":    true,
	"secret_key":    true,
	"secretkey":     true,

	// Document protection
	"owner_password": true,
	"user_password":  true,
	"license_key":    true,
	"licence_key":    true,

	// Credentials
	"credential":  true,
	"credentials": true,
	"auth":        true,
}

// sensitivePatterns contains regex patterns that indicate sensitive values.
// Values matching these patterns will be sanitized regardless of key name.
var sensitivePatterns = []*regexp.Regexp{
	// JWT tokens
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),

	// Bearer tokens
	regexp.MustCompile(`(?i)^bearer\s+.+`),

	// Basic auth
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),

	// AWS access keys
	regexp.MustCompile(`^AKIA[0-9A-Z]{16}$`),

	// Private key markers
	regexp.MustCompile(`(?i)-----BEGIN.*(PRIVATE|SECRET).*KEY-----`),
}

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// SecureHandler wraps an slog.Handler to sanitize sensitive information.
// It masks attributes whose key names a secret, values that look like
// credentials, and every occurrence of a configured text in the message
// and in string or error attribute values.
//
// The configured texts are the redaction texts of the running plan: they
// are usually license stamps naming a person, so they must not reappear
// in logs after being removed from the documents.
type SecureHandler struct {
	// handler is the underlying slog handler that receives sanitized records.
	handler slog.Handler

	// texts are the masked texts, longest first.
	texts []string

	// masker replaces every text with MaskValue. Nil when texts is empty.
	masker *strings.Replacer
}

// NewSecureHandler creates a new SecureHandler wrapping the given handler.
// If handler is nil, the returned SecureHandler will use slog.Default().Handler().
// Every non-empty masked text is replaced with MaskValue wherever it appears.
func NewSecureHandler(handler slog.Handler, masked ...string) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	h := &SecureHandler{handler: handler}
	h.setTexts(masked)
	return h
}

// setTexts stores the texts longest first so a text that contains another
// is replaced as a whole.
func (h *SecureHandler) setTexts(texts []string) {
	unique := make([]string, 0, len(texts))
	for _, text := range texts {
		if text == "" || slices.Contains(unique, text) {
			continue
		}
		unique = append(unique, text)
	}
	slices.SortStableFunc(unique, func(a, b string) int {
		return cmp.Compare(len(b), len(a))
	})

	h.texts = unique
	h.masker = nil
	if len(unique) == 0 {
		return
	}
	pairs := make([]string, 0, len(unique)*2)
	for _, text := range unique {
		pairs = append(pairs, text, MaskValue)
	}
	h.masker = strings.NewReplacer(pairs...)
}

// WithMaskedTexts returns a handler that additionally masks the given texts.
func (h *SecureHandler) WithMaskedTexts(texts ...string) *SecureHandler {
	child := &SecureHandler{handler: h.handler}
	child.setTexts(append(slices.Clone(h.texts), texts...))
	return child
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle sanitizes the record's message and attributes and passes it to the underlying handler.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, h.mask(r.Message), r.PC)

	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(h.sanitizeAttr(a))
		return true
	})

	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are sanitized before being added.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitizedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitizedAttrs[i] = h.sanitizeAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(sanitizedAttrs), texts: h.texts, masker: h.masker}
}

// WithGroup returns a new handler with the given group name.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name), texts: h.texts, masker: h.masker}
}

// sanitizeAttr sanitizes a single attribute, recursively handling groups.
func (h *SecureHandler) sanitizeAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		sanitizedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			sanitizedAttrs[i] = h.sanitizeAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitizedAttrs...)}
	}

	keyLower := strings.ToLower(a.Key)
	if sensitiveKeys[keyLower] || containsSensitiveKeyword(keyLower) {
		return slog.String(a.Key, MaskValue)
	}

	switch a.Value.Kind() {
	case slog.KindString:
		strVal := a.Value.String()
		if isSensitiveValue(strVal) {
			return slog.String(a.Key, MaskValue)
		}
		if masked := h.mask(strVal); masked != strVal {
			return slog.String(a.Key, masked)
		}
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok && err != nil {
			msg := err.Error()
			if masked := h.mask(msg); masked != msg {
				return slog.String(a.Key, masked)
			}
		}
	}

	return a
}

// mask replaces every configured text in s.
func (h *SecureHandler) mask(s string) string {
	if h.masker == nil {
		return s
	}
	return h.masker.Replace(s)
}

// containsSensitiveKeyword checks if the key contains sensitive keywords.
// The bare "key" keyword is excluded because it matches "primary_key" or "keyboard".
func containsSensitiveKeyword(key string) bool {
	sensitiveKeywords := []string{
		"password", "passwd", "secret", "token", "auth",
		"credential", "private",
	}

	for _, keyword := range sensitiveKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

// isSensitiveValue checks if a value matches sensitive patterns.
func isSensitiveValue(value string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// level returns Debug in verbose mode, otherwise Info.
// Anomalies are logged at Warn and stay visible either way.
func level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// NewSecureLogger creates a new slog.Logger with secure handling.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Info
//   - masked: Texts replaced with MaskValue wherever they appear
func NewSecureLogger(w io.Writer, verbose bool, masked ...string) *slog.Logger {
	textHandler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level(verbose)})
	return slog.New(NewSecureHandler(textHandler, masked...))
}

// NewSecureJSONLogger creates a new slog.Logger with secure handling
// that outputs JSON format. Useful for structured log aggregation.
func NewSecureJSONLogger(w io.Writer, verbose bool, masked ...string) *slog.Logger {
	jsonHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level(verbose)})
	return slog.New(NewSecureHandler(jsonHandler, masked...))
}

// WithMaskedTexts returns a logger that also masks the given texts.
// A logger not backed by a SecureHandler is wrapped in one.
func WithMaskedTexts(logger *slog.Logger, texts ...string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	if h, ok := logger.Handler().(*SecureHandler); ok {
		return slog.New(h.WithMaskedTexts(texts...))
	}
	return slog.New(NewSecureHandler(logger.Handler(), texts...))
}
