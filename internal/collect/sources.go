package collect

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed rss_sources.schema.json
var rssSourcesSchema string

// RSSSource is one configured feed.
type RSSSource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Link string `json:"link,omitempty"`
}

// LoadAPISources reads the domain allowlist, one domain per line. Blank lines
// and #-comments are ignored. A missing file means no domain filter.
func LoadAPISources(path string) []string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var domains []string
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		domains = append(domains, line)
	}
	return domains
}

// LoadRSSSources reads and validates the feed list. A missing file is not an
// error and yields no sources; a malformed file is.
func LoadRSSSources(path string) ([]RSSSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read RSS sources: %w", err)
	}

	schema, err := jsonschema.CompileString("rss_sources.schema.json", rssSourcesSchema)
	if err != nil {
		return nil, fmt.Errorf("compile RSS sources schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse RSS sources: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("validate RSS sources: %w", err)
	}

	var sources []RSSSource
	if err := json.Unmarshal(raw, &sources); err != nil {
		return nil, fmt.Errorf("parse RSS sources: %w", err)
	}
	return sources, nil
}
