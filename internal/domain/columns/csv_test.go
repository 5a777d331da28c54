package columns

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLineQuotedFields(t *testing.T) {
	got := ParseLine(`EQ-01,"Fuite, côté ""aspiration""",2024-01-15,,3`, ',')
	assert.Equal(t, []string{"EQ-01", `Fuite, côté "aspiration"`, "2024-01-15", "", "3"}, got)
}

func TestParseLineSemicolon(t *testing.T) {
	got := ParseLine(`a;"b;c";d`, ';')
	assert.Equal(t, []string{"a", "b;c", "d"}, got)
}

func TestSplitRecordsKeepsQuotedNewlines(t *testing.T) {
	text := "h1,h2\r\n1,\"multi\nline\"\r\n2,x\n"
	got := SplitRecords(text)
	assert.Equal(t, []string{"h1,h2", "1,\"multi\nline\"", "2,x"}, got)
}

func TestDetectDelimiter(t *testing.T) {
	assert.Equal(t, ';', DetectDelimiter("Num_equipement;Systeme;Description"))
	assert.Equal(t, ',', DetectDelimiter("Num_equipement,Systeme,Description"))
	assert.Equal(t, ',', DetectDelimiter(`"a;b;c",d,e`))
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank([]string{"", "  ", ""}))
	assert.False(t, IsBlank([]string{"", "x"}))
}
