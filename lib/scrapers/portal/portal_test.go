package portal

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"lionclub-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func TestCookieJarAccumulates(t *testing.T) {
	jar := NewCookieJar()

	first := http.Header{}
	first.Add("Set-Cookie", "WMONID=abc123; Path=/; HttpOnly")
	first.Add("Set-Cookie", "JSESSIONID=portal-session; Path=/")
	jar.Absorb(first)
	require.Equal(t, "WMONID=abc123; JSESSIONID=portal-session", jar.Header())

	// a later response for the same name replaces the value but keeps
	// the original position
	second := http.Header{}
	second.Add("Set-Cookie", "JSESSIONID=info-session; Path=/; Secure")
	second.Add("Set-Cookie", "ssotoken=xyz")
	jar.Absorb(second)
	require.Equal(t, "WMONID=abc123; JSESSIONID=info-session; ssotoken=xyz", jar.Header())

	jar.Absorb(http.Header{})
	require.Equal(t, "WMONID=abc123; JSESSIONID=info-session; ssotoken=xyz", jar.Header())
}

func TestCookieJarIgnoresMalformedEntries(t *testing.T) {
	jar := NewCookieJar()
	headers := http.Header{}
	headers.Add("Set-Cookie", "   ")
	headers.Add("Set-Cookie", "novalue")
	headers.Add("Set-Cookie", "=orphan")
	headers.Add("Set-Cookie", "ok=1")
	jar.Absorb(headers)
	require.Equal(t, "ok=1", jar.Header())
}

// stubPortal emulates both systems of the university portal on a single
// test server. the info system is distinguished by a path marker, which
// the client matches as a substring of the final url exactly like it
// would match a second hostname.
type stubPortal struct {
	server *httptest.Server

	mu       sync.Mutex
	hits     map[string]int
	lastInfo http.Header

	rejectLogin   bool
	omitRedirects bool
	hangSSO       bool
	personalInfo  func(w http.ResponseWriter)
	dashboardBody string
}

func (p *stubPortal) count(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hits[path]++
}

func (p *stubPortal) hitCount(path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits[path]
}

func newStubPortal(t *testing.T) *stubPortal {
	p := &stubPortal{hits: map[string]int{}}

	mux := http.NewServeMux()
	mux.HandleFunc("/enview/index.html", func(w http.ResponseWriter, r *http.Request) {
		p.count(r.URL.Path)
		http.SetCookie(w, &http.Cookie{Name: "WMONID", Value: "landing"})
		fmt.Fprint(w, "<html>landing</html>")
	})
	mux.HandleFunc("/enpass/login/auth", func(w http.ResponseWriter, r *http.Request) {
		p.count(r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "ko", r.PostFormValue("langKnd"))
		require.Equal(t, r.PostFormValue("userId"), r.PostFormValue("username"))

		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "portal-session"})
		if p.rejectLogin {
			fmt.Fprint(w, "<html>비밀번호가 일치하지 않습니다.</html>")
			return
		}
		fmt.Fprint(w, "<html>main</html>")
	})
	mux.HandleFunc("/enview/portal/mainLogin.face", func(w http.ResponseWriter, r *http.Request) {
		p.count(r.URL.Path)
		if p.hangSSO {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
			return
		}
		if p.omitRedirects {
			fmt.Fprint(w, "<html>static page</html>")
			return
		}
		fmt.Fprint(w, `<script>location.href = "/sso/bridge";</script>`)
	})
	mux.HandleFunc("/sso/bridge", func(w http.ResponseWriter, r *http.Request) {
		p.count(r.URL.Path)
		fmt.Fprintf(w, `<script>location.href='%s/info/sso_security_check'</script>`, p.server.URL)
	})
	mux.HandleFunc("/info/sso_security_check", func(w http.ResponseWriter, r *http.Request) {
		p.count(r.URL.Path)
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "info-session"})
	})
	mux.HandleFunc("/info/scrgBas/selectScrgBas.do", func(w http.ResponseWriter, r *http.Request) {
		p.count(r.URL.Path)
		p.mu.Lock()
		p.lastInfo = r.Header.Clone()
		p.mu.Unlock()
		if p.personalInfo != nil {
			p.personalInfo(w)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"list":[{"korNm":"김철수","deptNm":"컴퓨터학부"}]}`)
	})
	mux.HandleFunc("/enview/portal/main.face", func(w http.ResponseWriter, r *http.Request) {
		p.count(r.URL.Path)
		fmt.Fprintf(w, "<html><body>%s</body></html>", p.dashboardBody)
	})

	p.server = httptest.NewServer(mux)
	t.Cleanup(p.server.Close)
	return p
}

func (p *stubPortal) clientConfig() Config {
	base := p.server.URL
	return Config{
		LandingURL:       base + "/enview/index.html",
		LoginURL:         base + "/enpass/login/auth",
		SSOHandoffURL:    base + "/enview/portal/mainLogin.face",
		SecurityCheckURL: base + "/info/sso_security_check",
		PersonalInfoURL:  base + "/info/scrgBas/selectScrgBas.do",
		DashboardURL:     base + "/enview/portal/main.face",
		InfoDomain:       "/info/",
		Origin:           base,
		Referer:          base + "/websquare/websquare.jsp",

		RequestTimeoutSeconds: 5,
		AttemptTimeoutSeconds: 10,
	}
}

func newTestClient(t *testing.T, config Config) *Client {
	t.Cleanup(telemetry.SetupForTesting(t, "scrapers/portal"))
	client, err := NewClient(config)
	require.NoError(t, err)
	return client
}

func TestVerifySucceedsWithJSONIdentity(t *testing.T) {
	stub := newStubPortal(t)
	client := newTestClient(t, stub.clientConfig())

	result := client.Verify(context.Background(), "21012345", "correct-password")
	require.Equal(t, Result{Verified: true, Name: "김철수", Major: "컴퓨터학부"}, result)

	// both redirect hops of the hand-off ran before the info request
	require.Equal(t, 1, stub.hitCount("/sso/bridge"))
	require.Equal(t, 1, stub.hitCount("/info/sso_security_check"))

	// cookies from every prior response travel with the info request,
	// with the info system's session replacing the portal's. each name
	// appears on the wire exactly once
	cookie := stub.lastInfo.Get("Cookie")
	require.Contains(t, cookie, "WMONID=landing")
	require.Contains(t, cookie, "JSESSIONID=info-session")
	require.NotContains(t, cookie, "portal-session")
	require.Equal(t, 1, strings.Count(cookie, "WMONID="))
	require.Equal(t, 1, strings.Count(cookie, "JSESSIONID="))
	require.Equal(t, "application/json", stub.lastInfo.Get("Content-Type"))
}

func TestVerifyRejectedCredentials(t *testing.T) {
	stub := newStubPortal(t)
	stub.rejectLogin = true
	client := newTestClient(t, stub.clientConfig())

	result := client.Verify(context.Background(), "21012345", "wrong-password")
	require.Equal(t, Result{}, result)

	// rejection stops the attempt, nothing past the login submission
	// may be requested
	require.Equal(t, 1, stub.hitCount("/enview/index.html"))
	require.Equal(t, 1, stub.hitCount("/enpass/login/auth"))
	require.Equal(t, 0, stub.hitCount("/enview/portal/mainLogin.face"))
	require.Equal(t, 0, stub.hitCount("/info/scrgBas/selectScrgBas.do"))
}

func TestVerifyWithoutRedirectScript(t *testing.T) {
	stub := newStubPortal(t)
	stub.omitRedirects = true
	client := newTestClient(t, stub.clientConfig())

	result := client.Verify(context.Background(), "21012345", "correct-password")
	require.True(t, result.Verified)

	// without a redirect script the client falls back to requesting
	// the security check endpoint directly
	require.Equal(t, 1, stub.hitCount("/info/sso_security_check"))
	require.Equal(t, 0, stub.hitCount("/sso/bridge"))
}

func TestVerifyFallsBackToDashboard(t *testing.T) {
	stub := newStubPortal(t)
	stub.personalInfo = func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"errorMessage":"세션이 만료되었습니다"}`)
	}
	stub.dashboardBody = "홈으로 이동 박영희 (정보통신학부) 님, 환영합니다"
	client := newTestClient(t, stub.clientConfig())

	result := client.Verify(context.Background(), "21012345", "correct-password")
	require.Equal(t, Result{Verified: true, Name: "박영희", Major: "정보통신학부"}, result)
	require.Equal(t, 1, stub.hitCount("/enview/portal/main.face"))
}

func TestVerifyDashboardWithoutPattern(t *testing.T) {
	stub := newStubPortal(t)
	stub.personalInfo = func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"errorMessage":"오류"}`)
	}
	stub.dashboardBody = "환영합니다"
	client := newTestClient(t, stub.clientConfig())

	// a confirmed login stays verified even when no identity could be
	// scraped anywhere
	result := client.Verify(context.Background(), "21012345", "correct-password")
	require.Equal(t, Result{Verified: true}, result)
}

func TestVerifyTimeoutAfterLogin(t *testing.T) {
	stub := newStubPortal(t)
	stub.hangSSO = true
	config := stub.clientConfig()
	config.RequestTimeoutSeconds = 1
	client := newTestClient(t, config)

	// a stalled hand-off means the info session was never established,
	// so the attempt fails closed
	result := client.Verify(context.Background(), "21012345", "correct-password")
	require.Equal(t, Result{}, result)
	require.Equal(t, 0, stub.hitCount("/info/scrgBas/selectScrgBas.do"))
}

func TestVerifyUnreachablePortal(t *testing.T) {
	stub := newStubPortal(t)
	config := stub.clientConfig()
	stub.server.Close()

	client := newTestClient(t, config)
	result := client.Verify(context.Background(), "21012345", "correct-password")
	require.Equal(t, Result{}, result)
}

func TestExtractFromJSONVariants(t *testing.T) {
	client := newTestClient(t, Config{})

	for name, tc := range map[string]struct {
		body string
		want identity
	}{
		"list wrapper": {
			body: `{"list":[{"korNm":"김철수","deptNm":"컴퓨터학부"}]}`,
			want: identity{name: "김철수", major: "컴퓨터학부"},
		},
		"bare array": {
			body: `[{"studNm":"이민수","colgNm":"경영학과"}]`,
			want: identity{name: "이민수", major: "경영학과"},
		},
		"flat object with fallback aliases": {
			body: `{"nm":"정수진","deptName":"화학공학과"}`,
			want: identity{name: "정수진", major: "화학공학과"},
		},
		"empty list": {
			body: `{"list":[]}`,
			want: identity{},
		},
		"not json": {
			body: `<html>whatever</html>`,
			want: identity{},
		},
	} {
		t.Run(name, func(t *testing.T) {
			got, err := client.extractFromJSON([]byte(tc.body))
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}

	_, err := client.extractFromJSON([]byte(`{"errorMessage":"세션 없음"}`))
	require.ErrorIs(t, err, errSessionNotEstablished)
}

func TestExtractFromHTMLStrategies(t *testing.T) {
	client := newTestClient(t, Config{})

	for name, tc := range map[string]struct {
		body string
		want identity
	}{
		"hidden input fields": {
			body: `<html><body>
				<input type="hidden" name="korNm" value="김철수">
				<input type="hidden" name="deptNm" value="컴퓨터학부">
			</body></html>`,
			want: identity{name: "김철수", major: "컴퓨터학부"},
		},
		"script literal name only": {
			body: `<html><script>var studentName = "이민수";</script></html>`,
			want: identity{name: "이민수"},
		},
		"combined body text": {
			body: `<html><body><p>박영희 (정보통신학부) 학생 정보</p></body></html>`,
			want: identity{name: "박영희", major: "정보통신학부"},
		},
		"table cells": {
			body: `<html><body><table>
				<tr><th>이름</th><td>정수진</td></tr>
				<tr><th>소속</th><td>화학공학과</td></tr>
			</table></body></html>`,
			want: identity{name: "이름", major: "화학공학과"},
		},
		"nothing recognizable": {
			body: `<html><body><p>hello world</p></body></html>`,
			want: identity{},
		},
	} {
		t.Run(name, func(t *testing.T) {
			var got identity
			client.extractFromHTML([]byte(tc.body), &got)
			require.Equal(t, tc.want, got)
		})
	}
}

// an earlier strategy's partial hit must survive later strategies
func TestExtractFromHTMLMergesAcrossStrategies(t *testing.T) {
	client := newTestClient(t, Config{})

	body := `<html>
		<script>var n = "이민수";</script>
		<body><div>다른이름 (기계공학과)</div></body>
	</html>`
	var got identity
	client.extractFromHTML([]byte(body), &got)
	require.Equal(t, "이민수", got.name)
	require.Equal(t, "기계공학과", got.major)
}

func TestDefaultConfigMerging(t *testing.T) {
	client, err := NewClient(Config{LandingURL: "https://example.com/landing"})
	require.NoError(t, err)

	require.Equal(t, "https://example.com/landing", client.config.LandingURL)
	require.Equal(t, DefaultConfig().LoginURL, client.config.LoginURL)
	require.NotEmpty(t, client.config.FailurePhrases)
	require.True(t, client.isLoginFailure("오류: 로그인 실패하였습니다"))
	require.False(t, client.isLoginFailure("<html>main</html>"))
}
