package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeText_PlainText(t *testing.T) {
	input := "Line    with    spaces\r\n\r\n\r\n- Bullet item\r• Another item\n  3. Numbered"
	got, err := NormalizeText(input)
	require.NoError(t, err)
	assert.Equal(t, "Line with spaces\nBullet item\nAnother item\nNumbered", got)
}

func TestNormalizeText_HTML(t *testing.T) {
	input := `<html><head><title>ignored</title><style>p{}</style></head>
<body><h1>Frontend Developer</h1><p>We use <b>React</b> daily.</p>
<ul><li>3+ years</li><li>CSS</li></ul><script>alert(1)</script></body></html>`

	got, err := NormalizeText(input)
	require.NoError(t, err)
	assert.Equal(t, "Frontend Developer\nWe use React daily.\n3+ years\nCSS", got)
	assert.NotContains(t, got, "alert")
	assert.NotContains(t, got, "ignored")
}

func TestNormalizeText_Empty(t *testing.T) {
	got, err := NormalizeText("  \n\t ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLooksLikeHTML(t *testing.T) {
	assert.True(t, LooksLikeHTML("<p>hi</p>"))
	assert.True(t, LooksLikeHTML("text<br/>more"))
	assert.False(t, LooksLikeHTML("salary < 100k and > 50k"))
	assert.False(t, LooksLikeHTML("plain text"))
	assert.True(t, LooksLikeHTML("<!DOCTYPE html>\n<P CLASS=\"x\">hi"))
	assert.True(t, LooksLikeHTML("<!-- note -->text"))
	assert.False(t, LooksLikeHTML("Experience with List<String> and Map<K,V> in Java"))
	assert.False(t, LooksLikeHTML("Jane Doe <jane@example.com>"))
	assert.False(t, LooksLikeHTML("<body-language> matters"))
}

func TestNormalizeText_KeepsAngleBracketsInPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "generics",
			input: "Experience with List<String> and Map<K,V> in Java",
			want:  "Experience with List<String> and Map<K,V> in Java",
		},
		{
			name:  "email address",
			input: "Jane Doe <jane@example.com>\n  Frontend   Developer",
			want:  "Jane Doe <jane@example.com>\nFrontend Developer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeText(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeText_Deterministic(t *testing.T) {
	input := "<div>React   and <i>Redux</i></div>"
	a, err := NormalizeText(input)
	require.NoError(t, err)
	b, err := NormalizeText(input)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
