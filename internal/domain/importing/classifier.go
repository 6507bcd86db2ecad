package importing

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	headerScanRows   = 10
	contentScanRows  = 5
	contentScanCols  = 6
	minHeaderMatches = 2
)

var (
	phoneShapeRe   = regexp.MustCompile(`^[\d\s\-+()]{8,}$`)
	nonNameTokenRe = regexp.MustCompile(`[@\d]{3,}`)
)

// Classification is the outcome of column detection. Rows are 1-based.
type Classification struct {
	Map          FieldMap
	DataStartRow int
	// HeaderRow is 0 when no header row was found.
	HeaderRow int
	// Detected holds only the fields found by header or content sniffing.
	Detected FieldMap
}

// Classify guesses which columns hold which field. It tries header detection
// on the first rows, then content sniffing, then positional defaults. It never
// fails: an unrecognisable sheet maps positionally from row 1.
func Classify(rows [][]string) Classification {
	if m, headerRow, ok := detectHeader(rows); ok {
		return Classification{
			Map:          m.WithDefaults(),
			DataStartRow: headerRow + 1,
			HeaderRow:    headerRow,
			Detected:     m,
		}
	}

	m := sniffContent(rows)
	return Classification{
		Map:          m.WithDefaults(),
		DataStartRow: 1,
		Detected:     m,
	}
}

func detectHeader(rows [][]string) (FieldMap, int, bool) {
	limit := min(headerScanRows, len(rows))
	for i := 0; i < limit; i++ {
		m := FieldMap{}
		for col, cell := range rows[i] {
			f, ok := MatchHeader(cell)
			if !ok || m.Has(f) {
				continue
			}
			m[f] = col + 1
		}
		if len(m) >= minHeaderMatches {
			return m, i + 1, true
		}
	}
	return nil, 0, false
}

func sniffContent(rows [][]string) FieldMap {
	m := FieldMap{}
	limit := min(contentScanRows, len(rows))
	for i := 0; i < limit; i++ {
		row := rows[i]
		cols := min(contentScanCols, len(row))
		for col := 0; col < cols; col++ {
			v := strings.TrimSpace(row[col])
			if v == "" {
				continue
			}
			switch {
			case strings.Contains(v, "@") && strings.Contains(v, ".") && !m.Has(FieldEmail):
				m[FieldEmail] = col + 1
			case phoneShapeRe.MatchString(v) && !m.Has(FieldPhone):
				m[FieldPhone] = col + 1
			case utf8.RuneCountInString(v) > 2 && !nonNameTokenRe.MatchString(v) && !m.Has(FieldName):
				m[FieldName] = col + 1
			}
		}
		if m.Has(FieldName) && m.Has(FieldEmail) && m.Has(FieldPhone) {
			break
		}
	}
	return m
}
