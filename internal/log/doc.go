// Package log provides secure logging built on top of the standard slog package.
//
// The SecureHandler masks:
//   - attributes whose key names a secret (password, token, license_key, ...)
//   - values that look like credentials (JWT, bearer tokens, private key blocks)
//   - every occurrence of the plan's redaction texts, in the message and in
//     string or error attribute values
//
// Redaction texts are usually license stamps carrying a buyer's name. Masking
// them keeps a run's log from re-publishing what the run removed.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//
//	// Once the plan is validated, mask its texts as well
//	logger = log.WithMaskedTexts(logger, p.RedactionTexts()...)
//
//	logger.Warn("skipping", "dir", dir, "anomaly", kind)
package log
