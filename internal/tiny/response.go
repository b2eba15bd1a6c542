package tiny

// Format selects the legacy API response encoding.
type Format string

const (
	FormatJSON Format = "JSON"
	FormatXML  Format = "XML"
	FormatText Format = "Text"
)

// Response is the tagged result of a legacy API call. Downstream code switches
// on Format instead of probing fields: JSON carries a decoded Value, XML and
// Text carry the raw body.
type Response struct {
	Format Format
	Value  map[string]any
	Raw    string
}
