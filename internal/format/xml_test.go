package format

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseXML(t *testing.T) {
	in := `<?xml version="1.0" encoding="UTF-8"?>
<!-- catalog -->
<catalog xmlns="urn:books" region="eu">
  <book id="b1" lang="en">
    <title>Go in Practice</title>
    <price>39.5</price>
  </book>
  <book id="b2">
    <title>Data &amp; Formats</title>
    <price>12</price>
    <available/>
  </book>
  <note lang="en">Seasonal</note>
</catalog>`

	got, err := parseXML(in)
	require.NoError(t, err)

	want := map[string]any{
		"catalog": map[string]any{
			"@region": "eu",
			"book": []any{
				map[string]any{"@id": "b1", "@lang": "en", "title": "Go in Practice", "price": 39.5},
				map[string]any{"@id": "b2", "title": "Data & Formats", "price": int64(12), "available": nil},
			},
			"note": map[string]any{"@lang": "en", "#text": "Seasonal"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseXML mismatch (-want +got):\n%s", diff)
	}
}

func TestParseXMLErrors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr string
	}{
		{"mismatched tags", "<a><b></a>", "invalid XML"},
		{"two roots", "<a/><b/>", "multiple root elements"},
		{"no root", `<?xml version="1.0"?>`, "no root element"},
		{"stray text", "hello <a/>", "text outside root"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseXML(tt.in)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSerializeXML(t *testing.T) {
	data := map[string]any{
		"order": map[string]any{
			"@id":   int64(7),
			"item":  []any{"pen", "ink"},
			"note":  "a < b",
			"empty": nil,
		},
	}
	out, err := serializeXML(data, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, `<?xml version="1.0" encoding="UTF-8"?>
<order id="7">
  <empty/>
  <item>pen</item>
  <item>ink</item>
  <note>a &lt; b</note>
</order>
`, out)
}

func TestSerializeXMLWrapsWithRoot(t *testing.T) {
	opts := DefaultOptions()
	opts.Minify = true
	opts.RootElement = "people"

	out, err := serializeXML([]any{map[string]any{"name": "Ann"}, map[string]any{"name": "Bob"}}, opts)
	require.NoError(t, err)
	assert.Equal(t, `<?xml version="1.0" encoding="UTF-8"?><people><item><name>Ann</name></item><item><name>Bob</name></item></people>`, out)

	out, err = serializeXML(map[string]any{"a": int64(1), "b": true}, opts)
	require.NoError(t, err)
	assert.Equal(t, `<?xml version="1.0" encoding="UTF-8"?><people><a>1</a><b>true</b></people>`, out)
}

func TestSanitizeXMLName(t *testing.T) {
	assert.Equal(t, "first_name", sanitizeXMLName("first name"))
	assert.Equal(t, "_1st", sanitizeXMLName("1st"))
	assert.Equal(t, "item", sanitizeXMLName(""))
	assert.Equal(t, "a.b-c", sanitizeXMLName("a.b-c"))
}

func TestJSONToXMLRoundTrip(t *testing.T) {
	in := `{"user": {"name": "Ann", "age": 30, "roles": ["admin", "dev"], "@active": true}}`
	res := Convert(in, FormatJSON, FormatXML, DefaultOptions())
	require.True(t, res.Success, res.Error)

	back := Convert(res.Output, FormatXML, FormatJSON, DefaultOptions())
	require.True(t, back.Success, back.Error)
	assert.JSONEq(t, in, back.Output)
}

func TestSerializeXMLSkipsEmptyArrays(t *testing.T) {
	res := Convert(`{"a": {"b": []}}`, FormatJSON, FormatXML, DefaultOptions())
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<a/>\n", res.Output)

	res = Convert(`{"a": {"b": [], "c": 1}}`, FormatJSON, FormatXML, DefaultOptions())
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<a>\n  <c>1</c>\n</a>\n", res.Output)
}
