// Package httpclient holds what the HTTP-backed providers share: a configured
// resty client and parsing of model replies.
package httpclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultTimeout = 60 * time.Second

// New returns a resty client that retries transient failures (429 and 5xx).
func New(timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, _ error) bool {
			return r != nil && (r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500)
		})
}

// StatusError builds the error returned for a non-2xx reply.
func StatusError(provider, op string, r *resty.Response) error {
	return fmt.Errorf("%s %s: %s; body: %s", provider, op, r.Status(), Abbreviate(r.String(), 500))
}

var translationRE = regexp.MustCompile(`(?s)"translation"\s*:\s*"((?:[^"\\]|\\.)*)"`)

var labels = []string{"translation:", "translated:", "result:", "output:"}

// ExtractTranslation pulls the translated text out of a model reply. Models
// are asked for {"translation": "..."} but often wrap it in a code fence,
// surround it with prose, or answer in plain text.
func ExtractTranslation(content string) (string, error) {
	s := unfence(strings.TrimSpace(content))
	if t, ok := fromJSON(s); ok {
		return t, nil
	}
	if i := strings.Index(s, "{"); i >= 0 {
		if j := strings.LastIndex(s, "}"); j > i {
			if t, ok := fromJSON(s[i : j+1]); ok {
				return t, nil
			}
		}
		return "", fmt.Errorf("failed to parse translation JSON; content: %s", Abbreviate(s, 2000))
	}
	lower := strings.ToLower(s)
	for _, k := range labels {
		if pos := strings.Index(lower, k); pos >= 0 && pos < 80 {
			if cand := strings.TrimSpace(s[pos+len(k):]); cand != "" {
				return cand, nil
			}
		}
	}
	if s == "" {
		return "", fmt.Errorf("empty reply")
	}
	return s, nil
}

func unfence(s string) string {
	idx := strings.Index(s, "```")
	if idx < 0 {
		return s
	}
	rest := strings.TrimPrefix(s[idx+3:], "json")
	if j := strings.Index(rest, "```"); j >= 0 {
		return strings.TrimSpace(rest[:j])
	}
	return s
}

func fromJSON(s string) (string, bool) {
	var obj struct {
		Translation string `json:"translation"`
	}
	if err := json.Unmarshal([]byte(s), &obj); err == nil && obj.Translation != "" {
		return obj.Translation, true
	}
	m := translationRE.FindStringSubmatch(s)
	if len(m) != 2 {
		return "", false
	}
	var t string
	if err := json.Unmarshal([]byte(`"`+m[1]+`"`), &t); err != nil {
		return "", false
	}
	return t, t != ""
}

func Abbreviate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
