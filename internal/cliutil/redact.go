package cliutil

import "regexp"

const redactedPlaceholder = "[redacted]"

// Job messages quote command lines, so secrets show up as KEY=value or
// key: value fragments. Matching the conventional secret-bearing suffixes
// beats enumerating provider-specific variable names.
var (
	envRefPattern   = regexp.MustCompile(`\$\{[^}]+\}`)
	secretKVPattern = regexp.MustCompile(`(?i)\b([A-Z0-9_-]*(?:PASSWORD|PASSWD|SECRET|TOKEN|API_?KEY|CREDENTIALS?))(\s*[:=]\s*)(["']?)([^"'\s]+)(["']?)`)
)

// RedactSecrets masks unexpanded environment references and secret-looking
// key/value fragments before a message reaches a log stream. Manifest args go
// through os.ExpandEnv, so a surviving ${VAR} was meant to stay out of the
// file and must stay out of the log too.
func RedactSecrets(s string) string {
	if s == "" {
		return s
	}
	masked := envRefPattern.ReplaceAllString(s, redactedPlaceholder)
	return secretKVPattern.ReplaceAllString(masked, "${1}${2}${3}"+redactedPlaceholder+"${5}")
}
