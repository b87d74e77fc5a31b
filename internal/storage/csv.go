// Package storage reads and writes the issue table exchanged between the
// collect and analyze stages.
package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/oss-values/issue-stats/internal/domain"
)

// Table format variants. Summary carries the issue columns only; full adds
// the joined comment bodies and their authors.
const (
	FormatSummary = "summary"
	FormatFull    = "full"
)

const (
	labelSeparator         = ";"
	commentSeparator       = " | "
	commentAuthorSeparator = ", "
)

// ErrMissingColumn marks a table whose header lacks a required column. It is
// fatal: no rows are processed.
var ErrMissingColumn = errors.New("required column missing")

var requiredColumns = []string{"number", "title", "body", "user", "created_at", "closed_at"}

// WriteIssues renders records as a CSV table in the given format.
func WriteIssues(w io.Writer, records []domain.IssueRecord, format string) error {
	if format != FormatSummary && format != FormatFull {
		return fmt.Errorf("unknown table format %q", format)
	}

	header := append([]string{}, requiredColumns...)
	header = append(header, "labels")
	if format == FormatFull {
		header = append(header, "comments", "comment_authors")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, record := range records {
		closedAt := ""
		if !record.ClosedAt.IsZero() {
			closedAt = record.ClosedAt.UTC().Format(time.RFC3339)
		}
		row := []string{
			strconv.Itoa(record.Number),
			record.Title,
			record.Body,
			record.Author,
			record.CreatedAt.UTC().Format(time.RFC3339),
			closedAt,
			strings.Join(record.Labels, labelSeparator),
		}
		if format == FormatFull {
			bodies := make([]string, 0, len(record.Comments))
			authors := make([]string, 0, len(record.Comments))
			for _, comment := range record.Comments {
				// The joined cells reuse the separators as-is; the reader
				// degrades to author-only comments when the counts diverge.
				bodies = append(bodies, comment.Body)
				authors = append(authors, comment.Author)
			}
			row = append(row, strings.Join(bodies, commentSeparator), strings.Join(authors, commentAuthorSeparator))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row for issue %s: %w", row[0], err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadIssues parses a CSV table back into issue records. The header is
// validated once; a missing required column aborts before any row work.
// Rows with malformed timestamps are logged and skipped individually.
func ReadIssues(r io.Reader, logger *zap.Logger) ([]domain.IssueRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []domain.IssueRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Warn("skipping malformed row", zap.Int("line", line), zap.Error(err))
			continue
		}

		createdAt, err := time.Parse(time.RFC3339, cell(row, "created_at"))
		if err != nil {
			logger.Warn("skipping row with unparseable created_at",
				zap.Int("line", line),
				zap.String("created_at", cell(row, "created_at")))
			continue
		}
		record := domain.IssueRecord{
			Title:     cell(row, "title"),
			Body:      cell(row, "body"),
			Author:    cell(row, "user"),
			CreatedAt: createdAt.UTC(),
		}
		record.Number, _ = strconv.Atoi(cell(row, "number"))
		if raw := cell(row, "closed_at"); raw != "" {
			closedAt, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				// The row still counts toward classification; it just
				// cannot support duration computations.
				logger.Warn("row has unparseable closed_at",
					zap.Int("line", line),
					zap.String("closed_at", raw))
			} else {
				record.ClosedAt = closedAt.UTC()
			}
		}
		if raw := cell(row, "labels"); raw != "" {
			for _, label := range strings.Split(raw, labelSeparator) {
				if label != "" {
					record.Labels = append(record.Labels, label)
				}
			}
		}
		record.Comments = parseComments(cell(row, "comments"), cell(row, "comment_authors"))
		records = append(records, record)
	}
	return records, nil
}

// parseComments zips the joined comment bodies with their authors. When the
// two cells disagree on length, authors win and bodies are dropped, so
// contributor activity counts stay correct.
func parseComments(joinedBodies, joinedAuthors string) []domain.CommentRecord {
	if joinedAuthors == "" {
		return nil
	}
	authors := strings.Split(joinedAuthors, commentAuthorSeparator)
	var bodies []string
	if joinedBodies != "" {
		bodies = strings.Split(joinedBodies, commentSeparator)
	}
	comments := make([]domain.CommentRecord, 0, len(authors))
	for i, author := range authors {
		comment := domain.CommentRecord{Author: author}
		if len(bodies) == len(authors) {
			comment.Body = bodies[i]
		}
		comments = append(comments, comment)
	}
	return comments
}
