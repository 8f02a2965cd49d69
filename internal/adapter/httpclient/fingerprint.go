package httpclient

import (
	"net/url"
	"sort"
	"strings"
)

// fingerprint identifies a logical request: method, URL and the sorted
// query parameters. Two calls with the same fingerprint are duplicates
// regardless of the order their params were assembled in.
func fingerprint(method, rawURL string, query url.Values) string {
	var sb strings.Builder
	sb.WriteString(strings.ToUpper(method))
	sb.WriteByte('_')
	sb.WriteString(rawURL)
	sb.WriteByte('_')

	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		vs := append([]string(nil), query[k]...)
		sort.Strings(vs)
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(strings.Join(vs, ","))
	}
	return sb.String()
}
