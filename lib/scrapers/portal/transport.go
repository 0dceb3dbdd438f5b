package portal

import (
	"crypto/tls"
	"time"

	"lionclub-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
)

const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/143.0.0.0 Safari/537.36"

// newLegacyPortalClient builds the transport for the institution's
// portal. the portal still serves an outdated certificate and cipher
// profile, so certificate verification is disabled and the TLS floor is
// lowered for THIS client only. this must never become the transport
// policy of any other outbound call.
func newLegacyPortalClient(timeout time.Duration) *resty.Client {
	client := resty.New()
	client.SetHeaders(map[string]string{
		"Accept":          "application/json",
		"Accept-Language": "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7",
		"User-Agent":      browserUserAgent,
	})
	client.SetTimeout(timeout)
	// cookies are managed by the session's own jar via the Cookie header.
	// resty's default jar would resend its copy of every cookie alongside
	// ours, putting duplicate names on the wire.
	client.SetCookieJar(nil)
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))
	client.SetTLSClientConfig(&tls.Config{
		InsecureSkipVerify: true,
		MinVersion:         tls.VersionTLS10,
	})

	telemetry.InstrumentResty(client, "scrapers/portal/http")
	return client
}
