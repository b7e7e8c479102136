package db

import (
	"errors"
	"fmt"
	"strings"
)

// ConnectionString describes how a Driver reaches a database.
type ConnectionString interface {
	// String returns the ODBC attribute string, e.g.
	// "Driver={SQLite ODBC Driver};Database=test.sqlite;".
	String() string
	// Redacted is String with the password hidden, for logs.
	Redacted() string
	// Dialect answers catalog queries for this kind of database.
	Dialect() Dialect
}

const redactedPassword = "****"

type attribute struct {
	key, value string
}

// formatAttributes renders key=value pairs, bracing values that would
// otherwise be misparsed.
func formatAttributes(attrs []attribute) string {
	var b strings.Builder
	for _, attr := range attrs {
		b.WriteString(attr.key)
		b.WriteByte('=')
		if strings.EqualFold(attr.key, "driver") || needsBraces(attr.value) {
			b.WriteByte('{')
			b.WriteString(strings.ReplaceAll(attr.value, "}", "}}"))
			b.WriteByte('}')
		} else {
			b.WriteString(attr.value)
		}
		b.WriteByte(';')
	}
	return b.String()
}

func needsBraces(value string) bool {
	return strings.ContainsAny(value, ";{}") || strings.TrimSpace(value) != value
}

// span is one key=value pair of a connection string. value runs from
// start to end of the source text, braces included.
type span struct {
	key        string
	value      string
	start, end int
}

// scanAttributes walks a connection string pair by pair. Inside braces
// "}}" stands for a literal "}".
func scanAttributes(s string) ([]span, error) {
	var spans []span
	for i := 0; i < len(s); {
		if s[i] == ';' || s[i] == ' ' {
			i++
			continue
		}
		eq := strings.IndexByte(s[i:], '=')
		if eq < 0 {
			return nil, fmt.Errorf("attribute %q has no value", strings.TrimSpace(s[i:]))
		}
		key := strings.ToLower(strings.TrimSpace(s[i : i+eq]))
		if key == "" || strings.ContainsRune(key, ';') {
			return nil, fmt.Errorf("malformed attribute near %q", s[i:i+eq])
		}
		i += eq + 1

		for i < len(s) && s[i] == ' ' {
			i++
		}
		start := i
		var value string
		if i < len(s) && s[i] == '{' {
			var b strings.Builder
			for i++; ; i++ {
				if i >= len(s) {
					return nil, fmt.Errorf("attribute %q: unterminated brace", key)
				}
				if s[i] != '}' {
					b.WriteByte(s[i])
					continue
				}
				if i+1 < len(s) && s[i+1] == '}' {
					b.WriteByte('}')
					i++
					continue
				}
				break
			}
			i++
			value = b.String()
			end := i
			for i < len(s) && s[i] == ' ' {
				i++
			}
			if i < len(s) && s[i] != ';' {
				return nil, fmt.Errorf("attribute %q: unexpected text after brace", key)
			}
			spans = append(spans, span{key: key, value: value, start: start, end: end})
			continue
		}

		end := strings.IndexByte(s[i:], ';')
		if end < 0 {
			end = len(s) - i
		}
		raw := s[i : i+end]
		value = strings.TrimSpace(raw)
		spans = append(spans, span{key: key, value: value, start: start, end: start + len(strings.TrimRight(raw, " "))})
		i += end
	}
	return spans, nil
}

// ParseAttributes splits an ODBC connection string into its attributes.
// Keys are lower cased, braces around values are removed.
func ParseAttributes(s string) (map[string]string, error) {
	spans, err := scanAttributes(s)
	if err != nil {
		return nil, err
	}
	attrs := make(map[string]string, len(spans))
	for _, sp := range spans {
		attrs[sp.key] = sp.value
	}
	return attrs, nil
}

// Preformatted is a connection string used verbatim.
type Preformatted string

func (p Preformatted) String() string {
	return string(p)
}

func (p Preformatted) Redacted() string {
	spans, err := scanAttributes(string(p))
	if err != nil {
		return redactedPassword
	}

	redacted := string(p)
	// Back to front so earlier offsets stay valid.
	for i := len(spans) - 1; i >= 0; i-- {
		if sp := spans[i]; sp.key == "password" || sp.key == "pwd" {
			redacted = redacted[:sp.start] + redactedPassword + redacted[sp.end:]
		}
	}
	return redacted
}

// Dialect picks a dialect from the driver attribute.
func (p Preformatted) Dialect() Dialect {
	attrs, err := ParseAttributes(string(p))
	if err != nil {
		return informationSchemaDialect{}
	}
	return dialectForDriver(attrs["driver"])
}

// Sqlite connects to a SQLite file through the SQLite ODBC driver.
type Sqlite struct {
	Database string
	// Driver defaults to "SQLite ODBC Driver".
	Driver string
}

func (s Sqlite) String() string {
	driver := s.Driver
	if driver == "" {
		driver = "SQLite ODBC Driver"
	}
	return formatAttributes([]attribute{
		{"Driver", driver},
		{"Database", s.Database},
	})
}

func (s Sqlite) Redacted() string {
	return s.String()
}

func (Sqlite) Dialect() Dialect {
	return sqliteDialect{}
}

// MySQL connects to a MySQL server through MyODBC.
type MySQL struct {
	// Server defaults to localhost.
	Server   string
	Database string
	User     string
	Password string
}

func (m MySQL) attributes(password string) []attribute {
	server := m.Server
	if server == "" {
		server = "localhost"
	}
	return []attribute{
		{"Driver", "MySQL ODBC 5.1 Driver"},
		{"Server", server},
		{"Database", m.Database},
		{"User", m.User},
		{"Password", password},
		{"Option", "3"},
	}
}

func (m MySQL) String() string {
	return formatAttributes(m.attributes(m.Password))
}

func (m MySQL) Redacted() string {
	return formatAttributes(m.attributes(redactedPassword))
}

func (MySQL) Dialect() Dialect {
	return informationSchemaDialect{}
}

// Firebird connects to a Firebird 2.x database on this machine.
type Firebird struct {
	Database string
	User     string
	Password string
	// Charset defaults to WIN1250.
	Charset string
}

func (f Firebird) attributes(password string) []attribute {
	charset := f.Charset
	if charset == "" {
		charset = "WIN1250"
	}
	return []attribute{
		{"DRIVER", "Firebird/Interbase(r) Driver (*.fdb)"},
		{"DATABASE", f.Database},
		{"USER", f.User},
		{"PASSWORD", password},
		{"CHARSET", charset},
	}
}

func (f Firebird) String() string {
	return formatAttributes(f.attributes(f.Password))
}

func (f Firebird) Redacted() string {
	return formatAttributes(f.attributes(redactedPassword))
}

func (Firebird) Dialect() Dialect {
	return firebirdDialect{}
}

// sqlitePath extracts the database file for the native SQLite drivers.
func sqlitePath(cs ConnectionString) (string, error) {
	switch cs := cs.(type) {
	case Sqlite:
		if cs.Database == "" {
			return "", errors.New("sqlite: expecting filepath")
		}
		return cs.Database, nil
	case Preformatted:
		attrs, err := ParseAttributes(string(cs))
		if err != nil {
			return "", err
		}
		if _, ok := dialectForDriver(attrs["driver"]).(sqliteDialect); !ok {
			return "", fmt.Errorf("%w: %q needs the odbc build", ErrUnsupportedDriver, attrs["driver"])
		}
		if attrs["database"] == "" {
			return "", errors.New("sqlite: expecting filepath")
		}
		return attrs["database"], nil
	}
	return "", fmt.Errorf("%w: %s needs the odbc build", ErrUnsupportedDriver, cs.Redacted())
}
