package portal

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-resty/resty/v2"
)

var ErrLoginFailed = fmt.Errorf("portal rejected the provided credentials")

type loginState int

const (
	stateInit loginState = iota
	statePortalLoaded
	stateLoginSubmitted
	stateLoginFailed
	stateSSOPending
	stateSSORedirected
	stateInfoSessionEstablished
	stateSSOFailed
)

func (s loginState) String() string {
	switch s {
	case stateInit:
		return "INIT"
	case statePortalLoaded:
		return "PORTAL_LOADED"
	case stateLoginSubmitted:
		return "LOGIN_SUBMITTED"
	case stateLoginFailed:
		return "LOGIN_FAILED"
	case stateSSOPending:
		return "SSO_PENDING"
	case stateSSORedirected:
		return "SSO_REDIRECTED"
	case stateInfoSessionEstablished:
		return "INFO_SESSION_ESTABLISHED"
	case stateSSOFailed:
		return "SSO_FAILED"
	}
	return "UNKNOWN"
}

// the legacy framework redirects with inline javascript instead of
// http 3xx responses
var jsRedirectRegex = regexp.MustCompile(`location\.href\s*=\s*["']([^"']+)["']`)

// login drives one credential check against the portal and, when it
// succeeds, performs the SSO hand-off that establishes cookies for the
// info system. it returns ErrLoginFailed on rejected credentials and
// the transport error on anything else.
func (c *Client) login(ctx context.Context, sess *session, studentID, password string) error {
	state := stateInit
	advance := func(next loginState) {
		slog.DebugContext(ctx, "portal login transition", "from", state.String(), "to", next.String())
		state = next
	}

	// the landing page seeds the initial cookies, its body is not
	// inspected
	_, err := sess.get(ctx, c.config.LandingURL, nil)
	if err != nil {
		advance(stateSSOFailed)
		return err
	}
	advance(statePortalLoaded)

	res, err := sess.postForm(ctx, c.config.LoginURL, map[string]string{
		// the deployed portal has flip-flopped between parameter
		// naming schemes, submitting both bridges the drift
		"userId":         studentID,
		"pwd":            password,
		"username":       studentID,
		"password":       password,
		"langKnd":        "ko",
		"_enpass_login_": "submit",
		"gateway":        "true",
	})
	if err != nil {
		advance(stateSSOFailed)
		return err
	}
	advance(stateLoginSubmitted)

	// the portal answers 200 on bad credentials, the body is the only
	// signal
	if c.isLoginFailure(res.String()) {
		advance(stateLoginFailed)
		return ErrLoginFailed
	}
	advance(stateSSOPending)

	err = c.followSSOHandoff(ctx, sess, advance)
	if err != nil {
		advance(stateSSOFailed)
		return err
	}

	// there is no positive signal for SSO success here; the personal
	// info request later is the de facto confirmation
	advance(stateInfoSessionEstablished)
	return nil
}

func (c *Client) followSSOHandoff(ctx context.Context, sess *session, advance func(loginState)) error {
	res, err := sess.get(ctx, c.config.SSOHandoffURL, map[string]string{
		"url":     c.config.SecurityCheckURL,
		"langKnd": "ko",
	})
	if err != nil {
		return err
	}

	match := jsRedirectRegex.FindStringSubmatch(res.String())
	if match == nil {
		// no redirect script at all; the session cookies alone may be
		// enough to complete the hand-off
		_, err = sess.get(ctx, c.config.SecurityCheckURL, nil)
		if err != nil {
			return err
		}
		advance(stateSSORedirected)
		return nil
	}

	res, err = sess.get(ctx, resolveURL(responseURL(res), match[1]), nil)
	if err != nil {
		return err
	}
	advance(stateSSORedirected)

	final := responseURL(res)
	if final != nil && strings.Contains(final.String(), c.config.InfoDomain) {
		return nil
	}

	// not on the info system yet, look for a second redirect pointing
	// there
	if match := c.infoRedirectRegex.FindStringSubmatch(res.String()); match != nil {
		_, err = sess.get(ctx, resolveURL(final, match[1]), nil)
		return err
	}
	_, err = sess.get(ctx, c.config.SecurityCheckURL, nil)
	return err
}

func (c *Client) isLoginFailure(body string) bool {
	for _, phrase := range c.config.FailurePhrases {
		if strings.Contains(body, phrase) {
			return true
		}
	}
	return false
}

// responseURL reports the url the response was ultimately served from,
// after any http redirects.
func responseURL(res *resty.Response) *url.URL {
	if res.RawResponse == nil || res.RawResponse.Request == nil {
		return nil
	}
	return res.RawResponse.Request.URL
}

func resolveURL(base *url.URL, ref string) string {
	parsed, err := url.Parse(strings.TrimSpace(ref))
	if err != nil || base == nil {
		return ref
	}
	return base.ResolveReference(parsed).String()
}
