package news

import (
	"net/url"
	"strings"
)

var defaultPorts = map[string]string{"http": ":80", "https": ":443"}

// CanonicalURL reduces raw to scheme://host/path?query, dropping the fragment,
// every utm_* query parameter (case-insensitive) and trailing slashes on the
// path. The remaining parameters keep their order and encoding. Anything that
// does not parse as an absolute URL is returned trimmed.
//
// CanonicalURL(CanonicalURL(u)) == CanonicalURL(u) for every u. To keep that
// property every trailing slash is removed, not only the last one, so
// "https://x.com/a//" becomes "https://x.com/a".
func CanonicalURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	u, err := url.Parse(trimmed)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return trimmed
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	host = strings.TrimSuffix(host, defaultPorts[scheme])

	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(host)
	b.WriteString(strings.TrimRight(u.EscapedPath(), "/"))

	if q := filterQuery(u.RawQuery); q != "" {
		b.WriteByte('?')
		b.WriteString(q)
	}
	return b.String()
}

func filterQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	var kept []string
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		name, _, _ := strings.Cut(pair, "=")
		if n, err := url.QueryUnescape(name); err == nil {
			name = n
		}
		if strings.HasPrefix(strings.ToLower(name), "utm_") {
			continue
		}
		kept = append(kept, pair)
	}
	return strings.Join(kept, "&")
}
