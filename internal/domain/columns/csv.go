package columns

import "strings"

// SplitRecords cuts CSV text into records. Newlines inside quoted fields stay
// part of the record; CRLF and CR line endings are accepted.
func SplitRecords(text string) []string {
	var (
		records []string
		current strings.Builder
		quoted  bool
	)

	flush := func() {
		records = append(records, current.String())
		current.Reset()
	}

	chars := []rune(text)
	for i := 0; i < len(chars); i++ {
		ch := chars[i]
		switch {
		case ch == '"':
			quoted = !quoted
			current.WriteRune(ch)
		case (ch == '\n' || ch == '\r') && !quoted:
			if ch == '\r' && i+1 < len(chars) && chars[i+1] == '\n' {
				i++
			}
			flush()
		default:
			current.WriteRune(ch)
		}
	}
	if current.Len() > 0 {
		flush()
	}
	return records
}

// ParseLine splits one CSV record on delim. Quoted fields may contain the
// delimiter, and a doubled quote inside a quoted field yields one quote.
func ParseLine(line string, delim rune) []string {
	var (
		fields  []string
		current strings.Builder
		quoted  bool
	)

	chars := []rune(line)
	for i := 0; i < len(chars); i++ {
		ch := chars[i]
		switch {
		case ch == '"' && quoted && i+1 < len(chars) && chars[i+1] == '"':
			current.WriteRune('"')
			i++
		case ch == '"':
			quoted = !quoted
		case ch == delim && !quoted:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	fields = append(fields, current.String())
	return fields
}

// DetectDelimiter picks ';' when the header holds more unquoted semicolons
// than commas, ',' otherwise.
func DetectDelimiter(header string) rune {
	commas, semicolons := 0, 0
	quoted := false
	for _, ch := range header {
		switch ch {
		case '"':
			quoted = !quoted
		case ',':
			if !quoted {
				commas++
			}
		case ';':
			if !quoted {
				semicolons++
			}
		}
	}
	if semicolons > commas {
		return ';'
	}
	return ','
}

// IsBlank reports whether a record holds nothing but delimiters and spaces.
func IsBlank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
