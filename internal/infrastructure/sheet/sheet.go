// Package sheet decodes uploaded anomaly files into CSV text or row lists.
package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/errs"
)

type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNoSheet           = errors.New("workbook has no sheet")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Sheet is a decoded upload: Text is set for CSV, Rows for workbooks.
type Sheet struct {
	Name   string
	Format Format
	Text   string
	Rows   [][]string
}

// DetectFormat picks the decoder from the file extension.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return FormatExcel, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// ReadFile opens and decodes path according to its extension.
func ReadFile(path string) (Sheet, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return Sheet{}, err
	}

	file, err := os.Open(path)
	if err != nil {
		return Sheet{}, errs.Wrapf(err, "open %q", path)
	}
	defer file.Close()

	return Read(filepath.Base(path), format, file)
}

func Read(name string, format Format, r io.Reader) (Sheet, error) {
	out := Sheet{Name: name, Format: format}
	switch format {
	case FormatCSV:
		data, err := io.ReadAll(r)
		if err != nil {
			return Sheet{}, errs.Wrap(err, "read csv")
		}
		text, err := DecodeText(data)
		if err != nil {
			return Sheet{}, err
		}
		out.Text = text
	case FormatExcel:
		rows, err := ReadWorkbookRows(r)
		if err != nil {
			return Sheet{}, err
		}
		out.Rows = rows
	default:
		return Sheet{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return out, nil
}

// DecodeText strips a UTF-8 byte order mark and returns the text as is when
// it is valid UTF-8. Anything else is read as Windows-1252, the encoding of
// French Excel CSV exports.
func DecodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}

	decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return "", errs.Wrap(err, "decode windows-1252 text")
	}
	return string(decoded), nil
}

// ReadWorkbookRows returns the cell values of the first sheet.
func ReadWorkbookRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errs.Wrap(err, "open workbook")
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrNoSheet
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, errs.Wrapf(err, "read rows of sheet %q", sheetName)
	}
	return rows, nil
}
