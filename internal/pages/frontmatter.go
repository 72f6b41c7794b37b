package pages

import (
	"bytes"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/inful/mdfp"
	"gopkg.in/yaml.v3"
)

// uidNamespace scopes page uids so that the same diagram name always maps to the same uid.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://plantdoc/pages"))

// PageUID returns the stable uid of a diagram page.
func PageUID(name string) string {
	return uuid.NewSHA1(uidNamespace, []byte(name)).String()
}

// buildFrontMatter returns the YAML block (without delimiters) for a page.
// The fingerprint covers the title and the body; uid is excluded like every
// other identity field.
func buildFrontMatter(name, title string, body []byte) ([]byte, error) {
	hashed, err := serializeYAML(map[string]string{"title": title})
	if err != nil {
		return nil, err
	}
	fingerprint := mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(hashed), "\n"), string(body))

	return serializeYAML(map[string]string{
		"title":               title,
		"uid":                 PageUID(name),
		mdfp.FingerprintField: fingerprint,
	})
}

// serializeYAML emits a flat string map with sorted keys so output is stable.
func serializeYAML(fields map[string]string) ([]byte, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range keys {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fields[k]},
		)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
