package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"lionclub-backend/lib/htmlutil"
	"lionclub-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// raised when the personal info endpoint answers with an error payload,
// meaning the SSO hand-off never actually established a session on the
// info system. html scraping of that same body is pointless, the outer
// dashboard fallback takes over instead.
var errSessionNotEstablished = fmt.Errorf("info system session was not established")

type identity struct {
	name  string
	major string
}

var koreanNameRegex = regexp.MustCompile(`^[가-힣]{2,4}$`)
var scriptLiteralRegex = regexp.MustCompile(`["']([가-힣]{2,4})["']`)
var honorificNameRegex = regexp.MustCompile(`([가-힣]{2,4})\s*님`)
var cellCleanupRegex = regexp.MustCompile(`[()（）\s]`)

// extract requests the personal info endpoint and recovers the
// student's display name and department. the structured json payload is
// preferred; when it yields nothing the raw body is run through the
// ordered html heuristics. a missing field is not an error, the only
// error conditions are transport failure and the explicit
// session-not-established signal.
func (c *Client) extract(ctx context.Context, sess *session, studentID string) (identity, error) {
	res, err := sess.postJSON(ctx, c.config.PersonalInfoURL, map[string]string{
		"Content-Type": "application/json",
		"Origin":       c.config.Origin,
		"Referer":      c.config.Referer,
	}, map[string]string{"sno": studentID})
	if err != nil {
		return identity{}, err
	}

	body := res.Body()
	id, err := c.extractFromJSON(body)
	if err != nil {
		return identity{}, err
	}
	if id.name != "" && id.major != "" {
		return id, nil
	}

	c.extractFromHTML(body, &id)
	return id, nil
}

func (c *Client) extractFromJSON(body []byte) (identity, error) {
	var payload any
	if json.Unmarshal(body, &payload) != nil {
		// not json, the html heuristics take over
		return identity{}, nil
	}

	switch v := payload.(type) {
	case map[string]any:
		if msg, ok := v["errorMessage"]; ok && msg != nil {
			return identity{}, errSessionNotEstablished
		}
		if list, ok := v["list"].([]any); ok {
			if len(list) == 0 {
				return identity{}, nil
			}
			if item, ok := list[0].(map[string]any); ok {
				return c.identityFromFields(item), nil
			}
			return identity{}, nil
		}
		return c.identityFromFields(v), nil
	case []any:
		if len(v) > 0 {
			if item, ok := v[0].(map[string]any); ok {
				return c.identityFromFields(item), nil
			}
		}
	}
	return identity{}, nil
}

// the info system has renamed its fields over the years, the first
// non-empty alias wins
func (c *Client) identityFromFields(item map[string]any) identity {
	var id identity
	for _, alias := range c.config.NameFields {
		if s, ok := item[alias].(string); ok && s != "" {
			id.name = s
			break
		}
	}
	for _, alias := range c.config.MajorFields {
		if s, ok := item[alias].(string); ok && s != "" {
			id.major = s
			break
		}
	}
	return id
}

// extractFromHTML fills the missing identity fields by running the
// scraping heuristics in strict precedence order. each field stops at
// its first hit, a later heuristic never overrides an earlier one.
func (c *Client) extractFromHTML(body []byte, id *identity) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return
	}

	strategies := []func(*goquery.Document) identity{
		c.scanInputFields,
		c.scanScriptLiterals,
		c.scanBodyText,
		c.scanCells,
	}
	for _, scan := range strategies {
		if id.name != "" && id.major != "" {
			return
		}
		found := scan(doc)
		if id.name == "" {
			id.name = found.name
		}
		if id.major == "" {
			id.major = found.major
		}
	}
}

func (c *Client) scanInputFields(doc *goquery.Document) identity {
	var id identity
	doc.Find(`input[type="hidden"], input[type="text"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		attr := sel.AttrOr("name", "")
		if attr == "" {
			attr = sel.AttrOr("id", "")
		}
		value := strings.TrimSpace(sel.AttrOr("value", ""))

		if id.name == "" && textutil.MatchName(attr, c.config.NameFields) && koreanNameRegex.MatchString(value) {
			id.name = value
		}
		if id.major == "" && textutil.MatchName(attr, c.config.MajorFields) && value != "" {
			id.major = value
		}
		return id.name == "" || id.major == ""
	})
	return id
}

// the info system's frontend framework renders data through script
// blocks, a bare quoted korean literal is usually the student name
func (c *Client) scanScriptLiterals(doc *goquery.Document) identity {
	var id identity
	for _, node := range doc.Find("script").Nodes {
		match := scriptLiteralRegex.FindStringSubmatch(htmlutil.GetText(node))
		if match != nil {
			id.name = match[1]
			break
		}
	}
	return id
}

func (c *Client) scanBodyText(doc *goquery.Document) identity {
	var id identity
	text := doc.Find("body").Text()

	if match := c.combinedRegex.FindStringSubmatch(text); match != nil {
		id.name = match[1]
		id.major = strings.TrimSpace(match[2])
		return id
	}
	if match := honorificNameRegex.FindStringSubmatch(text); match != nil {
		id.name = match[1]
	}
	if match := c.majorParenRegex.FindStringSubmatch(text); match != nil {
		id.major = strings.TrimSpace(match[1])
	}
	return id
}

func (c *Client) scanCells(doc *goquery.Document) identity {
	var id identity
	doc.Find("td, th, div").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())

		if id.name == "" && koreanNameRegex.MatchString(text) {
			id.name = text
		}
		if id.major == "" && len([]rune(text)) < 50 && c.suffixRegex.MatchString(text) {
			cleaned := cellCleanupRegex.ReplaceAllString(text, "")
			if cleaned != "" {
				id.major = cleaned
			}
		}
		return id.name == "" || id.major == ""
	})
	return id
}

// extractFromDashboard is the last resort: fetch the first domain's
// dashboard and rerun only the combined name(department) pattern
// against its visible text. the dashboard greets logged-in students
// with exactly that shape.
func (c *Client) extractFromDashboard(ctx context.Context, sess *session) identity {
	res, err := sess.get(ctx, c.config.DashboardURL, nil)
	if err != nil {
		slog.WarnContext(ctx, "portal dashboard fallback failed", "err", err)
		return identity{}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return identity{}
	}
	match := c.combinedRegex.FindStringSubmatch(doc.Find("body").Text())
	if match == nil {
		return identity{}
	}
	return identity{name: match[1], major: strings.TrimSpace(match[2])}
}
