package retrieval

import (
	"regexp"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// DefaultIDKeys is the allow-list of metadata keys treated as entity
// identifiers when no explicit configuration is given.
var DefaultIDKeys = []string{"id", "formulation_id", "ingredient_id", "source_id", "entity_id"}

var idKeyPattern = regexp.MustCompile(`(?i)(^|_)(id|ids)$`)

// EntityLinker scans chunk metadata for values that plausibly reference
// graph entities. A key matches either the configured allow-list
// (case-insensitive) or the structural id/ids suffix pattern.
type EntityLinker struct {
	idKeys mapset.Set[string]
}

// NewEntityLinker creates a linker with the given identifier key names.
// An empty list falls back to DefaultIDKeys.
func NewEntityLinker(idKeys []string) *EntityLinker {
	if len(idKeys) == 0 {
		idKeys = DefaultIDKeys
	}
	keys := mapset.NewThreadUnsafeSet[string]()
	for _, key := range idKeys {
		keys.Add(strings.ToLower(key))
	}
	return &EntityLinker{idKeys: keys}
}

// CollectCandidateIDs returns the candidate entity ids found across chunks,
// de-duplicated with first-seen position preserved. Chunks are scanned in
// ranked order; within a chunk, metadata keys are visited in sorted order so
// the output is reproducible for identical inputs.
func (l *EntityLinker) CollectCandidateIDs(chunks []RetrievalChunk) []string {
	seen := mapset.NewThreadUnsafeSet[string]()
	ordered := make([]string, 0)
	for _, chunk := range chunks {
		for _, candidate := range l.metadataIDs(chunk.Metadata) {
			if seen.Add(candidate) {
				ordered = append(ordered, candidate)
			}
		}
	}
	return ordered
}

func (l *EntityLinker) metadataIDs(metadata map[string]interface{}) []string {
	if len(metadata) == 0 {
		return nil
	}

	keys := make([]string, 0, len(metadata))
	for key := range metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	ids := make([]string, 0)
	for _, key := range keys {
		lower := strings.ToLower(key)
		switch value := metadata[key].(type) {
		case string:
			if l.idKeys.Contains(lower) || idKeyPattern.MatchString(lower) {
				ids = append(ids, value)
			}
		case []interface{}:
			if !strings.HasSuffix(lower, "_ids") {
				continue
			}
			for _, item := range value {
				if id, ok := item.(string); ok {
					ids = append(ids, id)
				}
			}
		}
	}
	return ids
}
