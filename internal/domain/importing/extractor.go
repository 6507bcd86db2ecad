package importing

import "strings"

// Candidate is one extracted row. Row is the 1-based sheet row number.
type Candidate struct {
	Row         int
	Name        string
	Email       string
	Phone       string
	Company     string
	Designation string
}

// Empty reports whether the row carries no identifying data.
func (c Candidate) Empty() bool {
	return c.Name == "" && c.Email == "" && c.Phone == ""
}

// Extract reads every row from cls.DataStartRow to the end of the sheet.
// Rows with no name, email or phone are dropped.
func Extract(rows [][]string, cls Classification) []Candidate {
	m := cls.Map
	if m == nil {
		m = DefaultColumns
	}
	start := cls.DataStartRow
	if start < 1 {
		start = 1
	}

	out := make([]Candidate, 0, max(0, len(rows)-start+1))
	for i := start - 1; i < len(rows); i++ {
		row := rows[i]
		c := Candidate{
			Row:         i + 1,
			Name:        cell(row, m.Column(FieldName)),
			Email:       cell(row, m.Column(FieldEmail)),
			Phone:       cell(row, m.Column(FieldPhone)),
			Company:     cell(row, m.Column(FieldCompany)),
			Designation: cell(row, m.Column(FieldDesignation)),
		}
		if c.Empty() {
			continue
		}
		out = append(out, c)
	}
	return out
}

func cell(row []string, col int) string {
	if col < 1 || col > len(row) {
		return ""
	}
	return strings.TrimSpace(row[col-1])
}
