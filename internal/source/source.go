package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/XavierBriggs/fortuna/services/commentary-corpus/internal/storage"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/pkg/models"
)

// ErrUnsupportedFormat is returned for files that are not CSV, TSV or XLSX
var ErrUnsupportedFormat = errors.New("unsupported file format")

var gameIDPattern = regexp.MustCompile(`(?:live_)?playbyplay_(\w+)\.`)

// Table is a parsed source file: one header row plus data rows
type Table struct {
	Name   string
	GameID string
	Header []string
	Rows   [][]string
}

// RawRows converts the table into column-keyed rows for an adapter
func (t *Table) RawRows(schema models.SourceSchema) []models.RawRow {
	rows := make([]models.RawRow, 0, len(t.Rows))
	for i, cells := range t.Rows {
		fields := make(map[string]string, len(t.Header))
		for j, col := range t.Header {
			if j < len(cells) {
				fields[col] = cells[j]
			} else {
				fields[col] = ""
			}
		}
		rows = append(rows, models.RawRow{
			GameID: t.GameID,
			Schema: schema,
			Index:  i,
			Fields: fields,
		})
	}
	return rows
}

// GameIDFromName extracts the game id from playbyplay_<id>.csv or
// live_playbyplay_<id>.csv. Other names fall back to the base name.
func GameIDFromName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if m := gameIDPattern.FindStringSubmatch(base); m != nil {
		return m[1]
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

// Loader opens local files and s3:// objects
type Loader struct {
	s3        storage.ObjectGetter
	logger    *zap.Logger
	delimiter rune
}

// NewLoader creates a loader. The S3 client may be nil when no input uses s3://.
func NewLoader(s3Client storage.ObjectGetter, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		s3:     s3Client,
		logger: logger,
	}
}

// WithDelimiter forces the field separator for every non-workbook source.
// 0 restores detection by extension.
func (l *Loader) WithDelimiter(delimiter rune) *Loader {
	l.delimiter = delimiter
	return l
}

// Load reads and parses one source location
func (l *Loader) Load(ctx context.Context, location string) (*Table, error) {
	content, err := l.read(ctx, location)
	if err != nil {
		return nil, err
	}

	table, err := ParseWith(location, content, l.delimiter)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", location, err)
	}

	l.logger.Debug("source loaded",
		zap.String("location", location),
		zap.String("game_id", table.GameID),
		zap.Int("rows", len(table.Rows)),
	)
	return table, nil
}

func (l *Loader) read(ctx context.Context, location string) ([]byte, error) {
	if !storage.IsS3URI(location) {
		content, err := os.ReadFile(location)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", location, err)
		}
		return content, nil
	}

	if l.s3 == nil {
		return nil, fmt.Errorf("s3 client not initialized for %s", location)
	}

	bucket, key, err := storage.ParseS3URI(location)
	if err != nil {
		return nil, err
	}

	out, err := l.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", location, err)
	}
	defer out.Body.Close()

	content, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", location, err)
	}
	return content, nil
}

// Parse dispatches on the file extension
func Parse(name string, content []byte) (*Table, error) {
	return ParseWith(name, content, 0)
}

// ParseWith is Parse with a forced delimiter for non-workbook files,
// whatever their extension. A zero delimiter selects by extension.
func ParseWith(name string, content []byte, delimiter rune) (*Table, error) {
	lower := strings.ToLower(name)

	var (
		header []string
		rows   [][]string
		err    error
	)

	switch {
	case strings.HasSuffix(lower, ".xlsx"):
		header, rows, err = parseWorkbook(content)
	case delimiter != 0:
		header, rows, err = parseDelimited(content, delimiter)
	case strings.HasSuffix(lower, ".csv"):
		header, rows, err = parseDelimited(content, ',')
	case strings.HasSuffix(lower, ".tsv"):
		header, rows, err = parseDelimited(content, '\t')
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	if err != nil {
		return nil, err
	}

	return &Table{
		Name:   name,
		GameID: GameIDFromName(name),
		Header: header,
		Rows:   rows,
	}, nil
}

// ParseDelimiter reads a configured delimiter: empty means detect,
// "tab" or "\t" means a tab, otherwise a single character
func ParseDelimiter(value string) (rune, error) {
	switch value {
	case "":
		return 0, nil
	case "tab", `\t`, "\t":
		return '\t', nil
	}
	if utf8.RuneCountInString(value) != 1 {
		return 0, fmt.Errorf("delimiter %q must be a single character", value)
	}
	r, _ := utf8.DecodeRuneInString(value)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("invalid delimiter %q", value)
	}
	return r, nil
}

func parseDelimited(content []byte, comma rune) ([]string, [][]string, error) {
	// Spreadsheet exports often carry a UTF-8 BOM
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = comma
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse delimited file: %w", err)
	}

	return splitHeader(allRows)
}

func parseWorkbook(content []byte) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("no sheets in workbook")
	}

	// Play-by-play exports put the data on the first sheet
	allRows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read workbook rows: %w", err)
	}

	return splitHeader(allRows)
}

func splitHeader(allRows [][]string) ([]string, [][]string, error) {
	if len(allRows) == 0 {
		return nil, nil, fmt.Errorf("empty file")
	}

	header := make([]string, len(allRows[0]))
	for i, col := range allRows[0] {
		header[i] = strings.TrimSpace(col)
	}

	return header, allRows[1:], nil
}
