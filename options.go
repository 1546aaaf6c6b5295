package swarjson

// EscapeMode selects which bytes and codepoints are \u-escaped on output.
type EscapeMode uint8

const (
	// EscapeJSON is the standard escape set: control bytes, quote, backslash.
	EscapeJSON EscapeMode = iota
	// EscapeHTMLSafe additionally escapes <, >, &, / and U+2028/U+2029.
	EscapeHTMLSafe
	// EscapeUnicodeSafe escapes every non-ASCII codepoint as \uXXXX.
	EscapeUnicodeSafe
	// EscapeJavaScriptSafe escapes U+2028/U+2029 on top of the base set.
	EscapeJavaScriptSafe
)

// DecodeOptions control a single Decode call.
// The zero value is not the default; use DefaultDecodeOptions.
type DecodeOptions struct {
	// InternKeys enables the per-parse key interning cache.
	InternKeys bool

	// FloatsDecimals materializes fractional numbers as Decimal records
	// rather than IEEE doubles.
	FloatsDecimals bool

	// OrderedObjects materializes objects as ordered key-value sequences
	// rather than unordered mappings.
	OrderedObjects bool

	// IntegerDigitLimit rejects integer literals whose integer part exceeds
	// this many digits. 0 disables the limit.
	IntegerDigitLimit int

	// MaxBytes rejects inputs larger than this. 0 disables the limit.
	MaxBytes int

	// RejectDuplicateKeys errors on a repeated key within the same object,
	// compared on the raw encoded key bytes.
	RejectDuplicateKeys bool

	// ValidateStrings verifies that every produced string is valid UTF-8.
	ValidateStrings bool

	// CopyStrings copies every string out of the input buffer. When false,
	// unescaped strings of 64 bytes or more are returned as sub-slices of
	// the input, which must then outlive the decoded values.
	CopyStrings bool
}

// DefaultDecodeOptions returns the decoder defaults.
func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{
		ValidateStrings: true,
		CopyStrings:     true,
	}
}

// EncodeOptions control a single Encode call.
// The zero value is not the default; use DefaultEncodeOptions.
type EncodeOptions struct {
	// Indent < 0 selects compact output. Indent >= 0 enables pretty
	// printing; the indent unit is Indent spaces unless IndentUnit is set.
	Indent int

	// Escape selects the output escape mode.
	Escape EscapeMode

	// StrictKeys errors on duplicate mapping keys in the output.
	StrictKeys bool

	// SortKeys emits mapping entries in byte-sorted key order.
	SortKeys bool

	// Lean disables the domain-value fast paths; every mapping is treated
	// as a generic mapping.
	Lean bool

	// LineSeparator, AfterColon and IndentUnit are the byte strings used
	// when pretty-printing. Nil selects "\n", " " and Indent spaces.
	LineSeparator []byte
	AfterColon    []byte
	IndentUnit    []byte

	// Compression selects an output writer adapter by name: "", "gzip",
	// "gzip:N" (N a compression level), "zstd" or "s2".
	Compression string
}

// DefaultEncodeOptions returns the encoder defaults: compact output,
// standard JSON escaping.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{Indent: -1}
}

func (o *EncodeOptions) pretty() bool { return o.Indent >= 0 }

func (o *EncodeOptions) lineSeparator() []byte {
	if o.LineSeparator != nil {
		return o.LineSeparator
	}
	return []byte{'\n'}
}

func (o *EncodeOptions) afterColon() []byte {
	if o.AfterColon != nil {
		return o.AfterColon
	}
	return []byte{' '}
}

func (o *EncodeOptions) indentUnit() []byte {
	if o.IndentUnit != nil {
		return o.IndentUnit
	}
	unit := make([]byte, o.Indent)
	for i := range unit {
		unit[i] = ' '
	}
	return unit
}

// ParseDecodeOptions builds DecodeOptions from a host-supplied key-value
// map. Unknown keys and mistyped values fall back to defaults.
func ParseDecodeOptions(m map[string]interface{}) DecodeOptions {
	o := DefaultDecodeOptions()
	for k, v := range m {
		switch k {
		case "intern_keys":
			o.InternKeys = boolOpt(v, o.InternKeys)
		case "floats_decimals":
			o.FloatsDecimals = boolOpt(v, o.FloatsDecimals)
		case "ordered_objects":
			o.OrderedObjects = boolOpt(v, o.OrderedObjects)
		case "integer_digit_limit":
			o.IntegerDigitLimit = intOpt(v, o.IntegerDigitLimit)
		case "max_bytes":
			o.MaxBytes = intOpt(v, o.MaxBytes)
		case "reject_duplicate_keys":
			o.RejectDuplicateKeys = boolOpt(v, o.RejectDuplicateKeys)
		case "validate_strings":
			o.ValidateStrings = boolOpt(v, o.ValidateStrings)
		case "copy_strings":
			o.CopyStrings = boolOpt(v, o.CopyStrings)
		}
	}
	return o
}

// ParseEncodeOptions builds EncodeOptions from a host-supplied key-value
// map. Unknown keys and mistyped values fall back to defaults.
func ParseEncodeOptions(m map[string]interface{}) EncodeOptions {
	o := DefaultEncodeOptions()
	for k, v := range m {
		switch k {
		case "indent_width":
			o.Indent = intOpt(v, o.Indent)
		case "escape_mode":
			s, _ := v.(string)
			switch s {
			case "html_safe":
				o.Escape = EscapeHTMLSafe
			case "unicode_safe":
				o.Escape = EscapeUnicodeSafe
			case "javascript_safe":
				o.Escape = EscapeJavaScriptSafe
			default:
				o.Escape = EscapeJSON
			}
		case "strict_keys":
			o.StrictKeys = boolOpt(v, o.StrictKeys)
		case "sort_keys":
			o.SortKeys = boolOpt(v, o.SortKeys)
		case "lean":
			o.Lean = boolOpt(v, o.Lean)
		case "line_separator":
			o.LineSeparator = bytesOpt(v, o.LineSeparator)
		case "after_colon":
			o.AfterColon = bytesOpt(v, o.AfterColon)
		case "indent_unit":
			o.IndentUnit = bytesOpt(v, o.IndentUnit)
		case "compression":
			if s, ok := v.(string); ok {
				o.Compression = s
			}
		}
	}
	return o
}

func boolOpt(v interface{}, def bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

func intOpt(v interface{}, def int) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	}
	return def
}

func bytesOpt(v interface{}, def []byte) []byte {
	switch b := v.(type) {
	case []byte:
		return b
	case string:
		return []byte(b)
	}
	return def
}
