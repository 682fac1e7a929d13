package backend

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/moneykrishna/taskdesk/internal/core/domain"
)

// Keys that carry a message rather than a field error.
var messageKeys = []string{"detail", "message", "error"}

// parseError extracts the backend's message and DRF field errors from an
// error response. The message comes from the first of detail, message,
// error, non_field_errors[0] or the first entry of errors.
func parseError(status int, body []byte) *domain.HTTPError {
	herr := &domain.HTTPError{Status: status}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		herr.Message = fallbackMessage(status, body)
		return herr
	}

	for _, k := range messageKeys {
		if s, ok := asString(payload[k]); ok && s != "" {
			herr.Message = s
			break
		}
	}

	fields := make(map[string][]string)
	for k, v := range payload {
		if k == "errors" {
			var nested map[string]json.RawMessage
			if json.Unmarshal(v, &nested) == nil {
				for nk, nv := range nested {
					if msgs := asStrings(nv); len(msgs) > 0 {
						fields[nk] = msgs
					}
				}
			}
			continue
		}
		if isMessageKey(k) || k == "success" {
			continue
		}
		if msgs := asStrings(v); len(msgs) > 0 {
			fields[k] = msgs
		}
	}

	if herr.Message == "" {
		if nfe := fields["non_field_errors"]; len(nfe) > 0 {
			herr.Message = nfe[0]
		} else if first := firstField(fields); first != "" {
			herr.Message = first
		} else {
			herr.Message = http.StatusText(status)
		}
	}
	if len(fields) > 0 {
		herr.Fields = fields
	}
	return herr
}

func isMessageKey(k string) bool {
	for _, m := range messageKeys {
		if k == m {
			return true
		}
	}
	return false
}

func asString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// asStrings accepts "msg" or ["msg", ...].
func asStrings(raw json.RawMessage) []string {
	if s, ok := asString(raw); ok {
		if s == "" {
			return nil
		}
		return []string{s}
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	return list
}

// firstField returns "field: message" for the alphabetically first field.
func firstField(fields map[string][]string) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[0] + ": " + fields[keys[0]][0]
}

func fallbackMessage(status int, body []byte) string {
	s := strings.TrimSpace(string(body))
	if s == "" || strings.HasPrefix(s, "<") || len(s) > 200 {
		return http.StatusText(status)
	}
	return s
}
