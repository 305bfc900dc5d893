package kernelabi

import (
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Params is the decoded form of a CONFIG frame's plugin_params blob (§3.3):
// a flat key=value list separated by "," "&" or "\n", with single-quoted
// values for strings containing a separator. A malformed entry is logged
// and skipped; every other entry still parses.
type Params struct {
	values map[string]string
}

func isSeparator(b byte) bool {
	return b == ',' || b == '&' || b == '\n'
}

// ParseParams decodes raw plugin_params bytes into a Params accessor.
func ParseParams(raw []byte) *Params {
	p := &Params{values: make(map[string]string)}
	for _, entry := range splitEntries(string(raw)) {
		if entry == "" {
			continue
		}
		i := strings.IndexByte(entry, '=')
		if i == -1 {
			logrus.Warnf("kernelabi: malformed plugin_params entry (missing =): %q", entry)
			continue
		}
		key := entry[:i]
		value := entry[i+1:]
		if strings.HasPrefix(value, "'") {
			if len(value) < 2 || !strings.HasSuffix(value, "'") {
				logrus.Warnf("kernelabi: malformed plugin_params (missing closing '): key %q", key)
				continue
			}
			value = value[1 : len(value)-1]
		}
		p.values[key] = value
	}
	return p
}

// splitEntries splits s on any separator character, treating everything
// between a pair of single quotes as part of one entry even if it contains
// a separator. An unterminated quote swallows the rest of the string into
// its entry, which ParseParams then rejects as malformed on its own.
func splitEntries(s string) []string {
	var entries []string
	var cur strings.Builder
	inQuote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			cur.WriteByte(c)
		case isSeparator(c) && !inQuote:
			entries = append(entries, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	entries = append(entries, cur.String())
	return entries
}

// Get returns the value for key and whether it was present.
func (p *Params) Get(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	v, ok := p.values[key]
	return v, ok
}

// GetDefault returns the value for key, or def if absent.
func (p *Params) GetDefault(key, def string) string {
	if v, ok := p.Get(key); ok {
		return v
	}
	return def
}

// GetFloat returns key parsed as a decimal or scientific float. Missing or
// malformed values yield def.
func (p *Params) GetFloat(key string, def float64) float64 {
	v, ok := p.Get(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// GetInt returns key parsed as a base-10 integer. Missing or malformed
// values yield def.
func (p *Params) GetInt(key string, def int64) int64 {
	v, ok := p.Get(key)
	if !ok {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

// GetBool returns key parsed as a boolean. Missing or malformed values
// yield def.
func (p *Params) GetBool(key string, def bool) bool {
	v, ok := p.Get(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
