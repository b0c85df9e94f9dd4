package spec

// Severity of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// MarshalText renders the severity as "error" or "warning" in JSON.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Code is a stable diagnostic identifier. Downstream tooling matches on
// these, so both the codes and their severities are fixed.
type Code string

const (
	MD02  Code = "MD02"  // duplicate section url
	MD03  Code = "MD03"  // heading body is not a single literal
	MD08  Code = "MD08"  // unexpected item in list
	MD09  Code = "MD09"  // unrecognised code block language
	MD10  Code = "MD10"  // table without header row
	MD11  Code = "MD11"  // unrecognised block
	MD12  Code = "MD12"  // mixed ordered and unordered items at one level
	MD13  Code = "MD13"  // list nested deeper than four levels
	MD14  Code = "MD14"  // unsupported block inside list
	MD15  Code = "MD15"  // unsupported span inside emphasis
	MD16  Code = "MD16"  // term defined twice
	MD16b Code = "MD16b" // location of the previous definition
	MD17  Code = "MD17"  // emphasis that is not a single literal
	MD18  Code = "MD18"  // link text that is not literal or code
	MD19  Code = "MD19"  // section link text does not match section number
	MD20  Code = "MD20"  // unrecognised span
	MD26  Code = "MD26"  // output cannot be created
	MD27  Code = "MD27"  // assembly failed
	MD28  Code = "MD28"  // unresolvable link url
	MD29  Code = "MD29"  // unknown custom block id
	MD30  Code = "MD30"  // unsupported element inside quoted block
	MD31  Code = "MD31"  // table in quoted block without properties
	MD32  Code = "MD32"  // code line too long
	MD33  Code = "MD33"  // list start without preceding blank line
)

var warnings = map[Code]bool{
	MD09:  true,
	MD16:  true,
	MD16b: true,
	MD19:  true,
	MD32:  true,
}

// Severity returns the fixed severity of c.
func (c Code) Severity() Severity {
	if warnings[c] {
		return SeverityWarning
	}
	return SeverityError
}
