package database

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Descriptor is a parsed connection string.
type Descriptor struct {
	Database string
	Host     string
	Port     int
	Socket   string
	// Options holds every key other than database, host, port and socket.
	Options map[string]string
}

var descriptorLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Semi", Pattern: `;`},
	{Name: "Equal", Pattern: `=`},
	{Name: "Text", Pattern: `[^;=]+`},
})

type rawDescriptor struct {
	Pairs []*rawPair `( @@ ( ";" @@ )* )?`
}

type rawPair struct {
	Key   string `@Text "="`
	Value string `@( Text | "=" )*`
}

var descriptorParser = participle.MustBuild[rawDescriptor](
	participle.Lexer(descriptorLexer),
)

// ParseConnectionString parses a connection string produced by
// DefaultConnectionString. The prefix must match exactly.
func ParseConnectionString(prefix, connString string) (*Descriptor, error) {
	if !strings.HasPrefix(connString, prefix) {
		return nil, fmt.Errorf("connection string does not start with %q", prefix)
	}

	raw, err := descriptorParser.ParseString("", strings.TrimPrefix(connString, prefix))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	d := &Descriptor{Options: make(map[string]string)}
	for _, pair := range raw.Pairs {
		key := strings.TrimSpace(pair.Key)
		switch key {
		case "database", "dbname":
			d.Database = pair.Value
		case "host":
			d.Host = pair.Value
		case "port":
			port, err := strconv.Atoi(pair.Value)
			if err != nil {
				return nil, fmt.Errorf("invalid port %q: %w", pair.Value, err)
			}
			d.Port = port
		case "socket":
			d.Socket = pair.Value
		default:
			d.Options[key] = pair.Value
		}
	}

	return d, nil
}
