package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"ricavi/internal/core"
)

// maxBodyBytes caps request bodies; a month of cells fits easily.
const maxBodyBytes = 64 << 10

// ErrBadRequest marks malformed request input.
var ErrBadRequest = errors.New("bad request")

// ParsePeriodParams reads prefix+"year" and prefix+"month" from values.
// Missing or non-numeric values fall back to def. Out of range values are
// kept so the caller can reject them.
func ParsePeriodParams(values url.Values, prefix string, def core.Period) core.Period {
	p := def
	if v := strings.TrimSpace(values.Get(prefix + "year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			p.Year = y
		}
	}
	if v := strings.TrimSpace(values.Get(prefix + "month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			p = core.NewPeriod(p.Year, m)
		}
	}
	return p
}

// CellParams is one cell edit as sent by the entry form or the API.
type CellParams struct {
	Period core.Period
	Day    int
	Room   string
	Raw    string
}

// ParseCellParams reads a cell edit. Year, month and day are required.
func ParseCellParams(p *RequestBodyParser) (CellParams, error) {
	if err := p.Parse(); err != nil {
		return CellParams{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	year, err := p.Int("year")
	if err != nil {
		return CellParams{}, err
	}
	month, err := p.Int("month")
	if err != nil {
		return CellParams{}, err
	}
	day, err := p.Int("day")
	if err != nil {
		return CellParams{}, err
	}
	return CellParams{
		Period: core.NewPeriod(year, month),
		Day:    day,
		Room:   strings.TrimSpace(p.Get("room")),
		Raw:    p.Get("raw"),
	}, nil
}

// RequestBodyParser handles JSON and form-encoded bodies alike.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once and stores it for parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body == nil {
		return p
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = fmt.Errorf("body larger than %d bytes", maxBodyBytes)
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.IsJSONContent() || p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a value from the parsed data with control characters removed.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Int returns a required integer field.
func (p *RequestBodyParser) Int(key string) (int, error) {
	v := strings.TrimSpace(p.Get(key))
	if v == "" {
		return 0, fmt.Errorf("%w: missing %s", ErrBadRequest, key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrBadRequest, key)
	}
	return n, nil
}

// IsJSONContent reports whether the request declared a JSON body.
func (p *RequestBodyParser) IsJSONContent() bool {
	return strings.HasPrefix(strings.ToLower(p.contentType), "application/json")
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput removes control characters except tab, newline and
// carriage return. Everything else is stored verbatim.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
