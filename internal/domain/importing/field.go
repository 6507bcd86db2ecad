// Package importing turns a spreadsheet grid into contacts: it classifies
// columns, extracts candidate rows and reconciles them against existing data.
package importing

import (
	"regexp"
	"strings"
)

type Field int

const (
	FieldName Field = iota
	FieldEmail
	FieldPhone
	FieldCompany
	FieldDesignation
)

// Fields lists every field in matcher priority order.
var Fields = []Field{FieldName, FieldEmail, FieldPhone, FieldCompany, FieldDesignation}

func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldEmail:
		return "email"
	case FieldPhone:
		return "phone"
	case FieldCompany:
		return "company"
	case FieldDesignation:
		return "designation"
	}
	return "unknown"
}

// FieldMap maps each field to a 1-based column index. Zero means unassigned.
type FieldMap map[Field]int

// DefaultColumns is the positional layout used for fields nothing else claimed.
var DefaultColumns = FieldMap{
	FieldName:        1,
	FieldEmail:       2,
	FieldPhone:       3,
	FieldCompany:     4,
	FieldDesignation: 5,
}

func (m FieldMap) Column(f Field) int {
	return m[f]
}

func (m FieldMap) Has(f Field) bool {
	return m[f] > 0
}

// WithDefaults fills unassigned fields from DefaultColumns.
func (m FieldMap) WithDefaults() FieldMap {
	out := make(FieldMap, len(Fields))
	for _, f := range Fields {
		if c := m[f]; c > 0 {
			out[f] = c
			continue
		}
		out[f] = DefaultColumns[f]
	}
	return out
}

// HeaderMatcher recognises one field from normalised header text.
type HeaderMatcher struct {
	Field   Field
	Pattern *regexp.Regexp
}

func (m HeaderMatcher) Match(normalized string) bool {
	return m.Pattern.MatchString(normalized)
}

// HeaderMatchers are evaluated in order; the first match decides the field.
var HeaderMatchers = []HeaderMatcher{
	{FieldName, regexp.MustCompile(`^(name|fullname|contactname|personname|employeename)`)},
	{FieldEmail, regexp.MustCompile(`(email|mail|emailid|emailaddress|e?mail)`)},
	{FieldPhone, regexp.MustCompile(`(phone|mobile|contact|number|phonenumber|mobilenumber|contactnumber|telephone|cell)`)},
	{FieldCompany, regexp.MustCompile(`(company|organization|org|employer|business)`)},
	{FieldDesignation, regexp.MustCompile(`(designation|role|title|position|jobtitle)`)},
}

var separatorRe = regexp.MustCompile(`[\s\p{Z}\x{FEFF}_\-.]+`)

// NormalizeHeader lowercases s and strips whitespace, underscores, hyphens and dots.
func NormalizeHeader(s string) string {
	return strings.TrimSpace(separatorRe.ReplaceAllString(strings.ToLower(s), ""))
}

// MatchHeader returns the field a header cell names, if any.
func MatchHeader(cell string) (Field, bool) {
	n := NormalizeHeader(cell)
	if n == "" {
		return 0, false
	}
	for _, m := range HeaderMatchers {
		if m.Match(n) {
			return m.Field, true
		}
	}
	return 0, false
}
