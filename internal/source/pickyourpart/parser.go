package pickyourpart

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	rowSelector      = "div.pypvi_resultRow"
	ymmSelector      = ".pypvi_ymm"
	photoSelector    = "img.pypvi_photo"
	thumbSelector    = "a.pypvi_thumb"
	dateTimeSelector = "time[datetime]"
)

var (
	whitespace = regexp.MustCompile(`\s+`)
	usDate     = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
)

// parser turns AJAX inventory fragments into raw vehicle rows. Relative
// image URLs resolve against root; now supplies the fallback availability
// timestamp.
type parser struct {
	root *url.URL
	now  func() time.Time
}

// parseInventory extracts vehicle rows from an inventory fragment.
// A row that cannot be parsed is dropped; its siblings still parse.
func (p *parser) parseInventory(r io.Reader) ([]rawVehicle, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse inventory fragment: %w", err)
	}

	var vehicles []rawVehicle
	doc.Find(rowSelector).Each(func(_ int, row *goquery.Selection) {
		id, ok := row.Attr("id")
		if !ok || strings.TrimSpace(id) == "" {
			return
		}
		v, ok := p.parseRow(row, id)
		if !ok {
			return
		}
		vehicles = append(vehicles, v)
	})

	return vehicles, nil
}

func (p *parser) parseRow(row *goquery.Selection, id string) (rawVehicle, bool) {
	year, makeName, model, ok := parseHeading(normalize(row.Find(ymmSelector).First().Text()))
	if !ok {
		return rawVehicle{}, false
	}

	text := normalize(row.Text())

	v := rawVehicle{
		RowID:       strings.TrimSpace(id),
		Year:        year,
		Make:        makeName,
		Model:       model,
		Color:       labelValue(text, "Color:"),
		VIN:         labelValue(text, "VIN:"),
		Section:     labelValue(text, "Section:"),
		Row:         labelValue(text, "Row:"),
		Space:       labelValue(text, "Space:"),
		StockNumber: labelValue(text, "Stock #:"),
		Available:   p.parseAvailable(row, text),
		ImageURLs:   p.parseImages(row),
	}
	return v, true
}

// parseHeading splits "2003 Honda Accord" into year, make and model.
func parseHeading(heading string) (year int, makeName, model string, ok bool) {
	fields := strings.Fields(heading)
	if len(fields) < 2 {
		return 0, "", "", false
	}
	year, err := strconv.Atoi(fields[0])
	if err != nil || year < 1900 {
		return 0, "", "", false
	}
	makeName = fields[1]
	if len(fields) > 2 {
		model = strings.Join(fields[2:], " ")
	}
	return year, makeName, model, true
}

// labelValue finds label inside whitespace-normalized row text and returns
// the single token following it. A token ending in ":" is the start of the
// next label, which happens when malformed markup puts two labels adjacent
// with no value between them; that reads as an absent value.
func labelValue(text, label string) string {
	idx := strings.Index(text, label)
	if idx < 0 {
		return ""
	}
	rest := strings.TrimSpace(text[idx+len(label):])
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return ""
	}
	token := fields[0]
	if strings.HasSuffix(token, ":") {
		return ""
	}
	return token
}

// parseAvailable prefers the machine-readable datetime attribute, falls back
// to a M/D/YYYY substring near the "Available:" label, and defaults to now.
func (p *parser) parseAvailable(row *goquery.Selection, text string) time.Time {
	if dt, ok := row.Find(dateTimeSelector).First().Attr("datetime"); ok {
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, strings.TrimSpace(dt)); err == nil {
				return t
			}
		}
	}

	idx := strings.Index(text, "Available:")
	if idx >= 0 {
		if m := usDate.FindStringSubmatch(text[idx:]); m != nil {
			month, _ := strconv.Atoi(m[1])
			day, _ := strconv.Atoi(m[2])
			year, _ := strconv.Atoi(m[3])
			return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		}
	}

	return p.now()
}

func (p *parser) parseImages(row *goquery.Selection) []string {
	var urls []string
	seen := make(map[string]struct{})

	add := func(raw string) {
		u := p.cleanImageURL(raw)
		if u == "" {
			return
		}
		if _, dup := seen[u]; dup {
			return
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}

	if src, ok := row.Find(photoSelector).First().Attr("src"); ok {
		add(src)
	}
	row.Find(thumbSelector).Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok {
			add(href)
		}
	})

	return urls
}

// cleanImageURL resolves a possibly relative image URL against the site root
// and strips resizing parameters so the canonical full-size URL remains.
func (p *parser) cleanImageURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	resolved := p.root.ResolveReference(u)

	q := resolved.Query()
	for _, param := range []string{"width", "height", "mode"} {
		q.Del(param)
	}
	resolved.RawQuery = q.Encode()

	return resolved.String()
}

func normalize(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
