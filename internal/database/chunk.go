package database

import (
	"context"
	"fmt"
	"strings"
)

// ChunkStrings splits values into consecutive slices of at most size elements.
func ChunkStrings(values []string, size int) [][]string {
	if size <= 0 || len(values) == 0 {
		return nil
	}
	out := make([][]string, 0, (len(values)+size-1)/size)
	for start := 0; start < len(values); start += size {
		end := start + size
		if end > len(values) {
			end = len(values)
		}
		out = append(out, values[start:end])
	}
	return out
}

// InPlaceholders returns "$from, $from+1, ..." for n positional parameters.
func InPlaceholders(from, n int) string {
	if n <= 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "$%d", from+i)
	}
	return b.String()
}

// QueryStringsIn runs query once per chunk of values and collects the first
// column of every returned row. The query must contain a single %s verb where
// the IN list belongs, e.g. "SELECT email FROM contacts WHERE email IN (%s)".
func QueryStringsIn(ctx context.Context, q Querier, query string, values []string, batchSize int) ([]string, error) {
	var out []string
	for _, chunk := range ChunkStrings(values, batchSize) {
		args := make([]any, len(chunk))
		for i, v := range chunk {
			args[i] = v
		}

		rows, err := q.Query(ctx, fmt.Sprintf(query, InPlaceholders(1, len(chunk))), args...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var v string
			if err := rows.Scan(&v); err != nil {
				rows.Close()
				return nil, err
			}
			out = append(out, v)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
