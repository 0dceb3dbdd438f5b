// Package portal verifies student credentials by emulating a browser
// session against the university's legacy SSO portal. The portal
// predates any kind of verification API, so the only way to confirm a
// student is to log in exactly like their browser would and scrape the
// identity the info system hands back.
package portal

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"dario.cat/mergo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("scrapers/portal")

// Config describes one university portal deployment. Every field has a
// working default for the University of Suwon, overriding a subset is
// enough to point the scraper elsewhere.
type Config struct {
	LandingURL       string `json:"landing_url"`
	LoginURL         string `json:"login_url"`
	SSOHandoffURL    string `json:"sso_handoff_url"`
	SecurityCheckURL string `json:"security_check_url"`
	PersonalInfoURL  string `json:"personal_info_url"`
	DashboardURL     string `json:"dashboard_url"`

	// InfoDomain marks the second system of the portal pair. A redirect
	// chain has arrived when the final url contains it as a substring.
	InfoDomain string `json:"info_domain"`
	Origin     string `json:"origin"`
	Referer    string `json:"referer"`

	// FailurePhrases are the korean error strings the login page embeds
	// on bad credentials.
	FailurePhrases []string `json:"failure_phrases"`
	NameFields     []string `json:"name_fields"`
	MajorFields    []string `json:"major_fields"`
	DeptSuffixes   []string `json:"dept_suffixes"`

	RequestTimeoutSeconds int `json:"request_timeout_seconds"`
	AttemptTimeoutSeconds int `json:"attempt_timeout_seconds"`
}

func DefaultConfig() Config {
	return Config{
		LandingURL:       "https://portal.suwon.ac.kr/enview/index.html",
		LoginURL:         "https://portal.suwon.ac.kr/enpass/login/auth",
		SSOHandoffURL:    "https://portal.suwon.ac.kr/enview/portal/mainLogin.face",
		SecurityCheckURL: "https://info.suwon.ac.kr/sso_security_check",
		PersonalInfoURL:  "https://info.suwon.ac.kr/scrgBas/selectScrgBas.do",
		DashboardURL:     "https://portal.suwon.ac.kr/enview/portal/main.face",
		InfoDomain:       "info.suwon.ac.kr",
		Origin:           "https://info.suwon.ac.kr",
		Referer:          "https://info.suwon.ac.kr/websquare/websquare.jsp",
		FailurePhrases: []string{
			"비밀번호가 일치하지 않습니다",
			"존재하지 않는 사용자",
			"로그인 실패",
		},
		NameFields:  []string{"korNm", "name", "hgNm", "studNm", "nm"},
		MajorFields: []string{"deptNm", "major", "colgNm", "dept", "deptName"},
		DeptSuffixes: []string{
			"학부", "학과", "전공", "과", "대학",
		},
		RequestTimeoutSeconds: 15,
		AttemptTimeoutSeconds: 90,
	}
}

// Result is what credential verification resolves to. Verification
// never returns an error to its caller: anything short of a confirmed
// login reads as unverified.
type Result struct {
	Verified bool   `json:"verified"`
	Name     string `json:"name,omitempty"`
	Major    string `json:"major,omitempty"`
}

type Client struct {
	config Config

	infoRedirectRegex *regexp.Regexp
	combinedRegex     *regexp.Regexp
	majorParenRegex   *regexp.Regexp
	suffixRegex       *regexp.Regexp
}

// NewClient fills unset config fields from DefaultConfig and compiles
// the korean identity patterns.
func NewClient(config Config) (*Client, error) {
	err := mergo.Merge(&config, DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("could not apply portal config defaults: %w", err)
	}

	suffixes := strings.Join(config.DeptSuffixes, "|")
	major := fmt.Sprintf(`[가-힣\s]+(?:%s)`, suffixes)
	combined := fmt.Sprintf(`([가-힣]{2,4})\s*[(（]\s*(%s)\s*[)）]`, major)

	return &Client{
		config:            config,
		infoRedirectRegex: regexp.MustCompile(
			fmt.Sprintf(`location\.href\s*=\s*["']([^"']*%s[^"']*)["']`, regexp.QuoteMeta(config.InfoDomain))),
		combinedRegex:     regexp.MustCompile(combined),
		majorParenRegex:   regexp.MustCompile(fmt.Sprintf(`[(（]\s*(%s)\s*[)）]`, major)),
		suffixRegex:       regexp.MustCompile(fmt.Sprintf(`(?:%s)`, suffixes)),
	}, nil
}

// Verify runs one full login attempt for the given credentials and
// reports whether the portal accepted them, along with whatever
// identity could be scraped. It fails closed: a panic, a timeout, an
// unreachable portal and rejected credentials all produce an
// unverified Result with a nil error.
func (c *Client) Verify(ctx context.Context, studentID, password string) (result Result) {
	ctx, span := tracer.Start(ctx, "Verify", trace.WithAttributes(
		attribute.String("student_id", studentID),
	))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "portal verification panicked", "recovered", r)
			span.SetStatus(codes.Error, fmt.Sprintf("panic: %v", r))
			result = Result{}
		}
		span.SetAttributes(attribute.Bool("verified", result.Verified))
	}()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.config.AttemptTimeoutSeconds)*time.Second)
	defer cancel()

	// each attempt gets a fresh session, cookies never leak between
	// students
	sess := newSession(newLegacyPortalClient(
		time.Duration(c.config.RequestTimeoutSeconds) * time.Second))

	err := c.login(ctx, sess, studentID, password)
	if err != nil {
		if err == ErrLoginFailed {
			slog.InfoContext(ctx, "portal rejected credentials", "student_id", studentID)
		} else {
			slog.WarnContext(ctx, "portal login did not complete", "student_id", studentID, "err", err)
			span.RecordError(err)
		}
		return Result{}
	}

	id, err := c.extract(ctx, sess, studentID)
	if err != nil {
		// the login itself succeeded, so the student is verified even
		// when the info system refused to hand out their record
		slog.WarnContext(ctx, "personal info extraction failed, trying dashboard",
			"student_id", studentID, "err", err)
		id = c.extractFromDashboard(ctx, sess)
	}

	return Result{Verified: true, Name: id.name, Major: id.major}
}
