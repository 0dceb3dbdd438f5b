package portal

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// CookieJar accumulates Set-Cookie values across every response of one
// verification attempt. the portal hands out cookies from two
// subdomains and expects all of them back on each request, so no
// domain, path or expiry scoping is modeled; the newest value for a
// name always wins.
type CookieJar struct {
	names  []string
	values map[string]string
}

func NewCookieJar() *CookieJar {
	return &CookieJar{values: map[string]string{}}
}

// Absorb merges every Set-Cookie entry of a response into the jar,
// keeping only the `name=value` token before the first `;`.
func (j *CookieJar) Absorb(headers http.Header) {
	for _, line := range headers.Values("Set-Cookie") {
		pair := strings.TrimSpace(strings.SplitN(line, ";", 2)[0])
		if pair == "" {
			continue
		}
		name, _, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			continue
		}
		if _, exists := j.values[name]; !exists {
			j.names = append(j.names, name)
		}
		j.values[name] = pair
	}
}

// Header renders the jar as a single outgoing Cookie header value.
// entries keep their first-seen order so the output is stable between
// calls.
func (j *CookieJar) Header() string {
	pairs := make([]string, len(j.names))
	for i, name := range j.names {
		pairs[i] = j.values[name]
	}
	return strings.Join(pairs, "; ")
}

// session bundles the transport and the cookie jar of one verification
// attempt. it is created fresh per attempt and never shared, cookies
// must not bleed between users.
type session struct {
	http *resty.Client
	jar  *CookieJar
}

func newSession(client *resty.Client) *session {
	return &session{http: client, jar: NewCookieJar()}
}

func (s *session) do(ctx context.Context, method, link string, build func(req *resty.Request)) (*resty.Response, error) {
	req := s.http.R().SetContext(ctx)
	if cookie := s.jar.Header(); cookie != "" {
		req.SetHeader("Cookie", cookie)
	}
	if build != nil {
		build(req)
	}

	res, err := req.Execute(method, link)
	if err != nil {
		return nil, err
	}
	s.jar.Absorb(res.Header())
	return res, nil
}

func (s *session) get(ctx context.Context, link string, query map[string]string) (*resty.Response, error) {
	return s.do(ctx, http.MethodGet, link, func(req *resty.Request) {
		if len(query) > 0 {
			req.SetQueryParams(query)
		}
	})
}

func (s *session) postForm(ctx context.Context, link string, form map[string]string) (*resty.Response, error) {
	return s.do(ctx, http.MethodPost, link, func(req *resty.Request) {
		req.SetFormData(form)
	})
}

func (s *session) postJSON(ctx context.Context, link string, headers map[string]string, body any) (*resty.Response, error) {
	return s.do(ctx, http.MethodPost, link, func(req *resty.Request) {
		req.SetHeaders(headers)
		req.SetBody(body)
	})
}
