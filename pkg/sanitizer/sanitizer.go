package sanitizer

import (
	"net/url"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

// SanitizeBaseURL prepares a service base URL for path concatenation. Input without a
// scheme gets http://; unparseable input yields "".
func SanitizeBaseURL(input string) string {
	p := Pipeline{
		strings.TrimSpace,
		func(s string) string {
			if s == "" || strings.Contains(s, "://") {
				return s
			}
			return "http://" + s
		},
		func(s string) string { return strings.TrimRight(s, "/") },
	}

	s := p.Apply(input)
	if s == "" {
		return ""
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return ""
	}
	u.Host = strings.ToLower(u.Host)
	u.RawQuery = ""
	u.Fragment = ""

	return u.String()
}
