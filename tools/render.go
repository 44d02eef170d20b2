package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/athapong/graphrag-mcp/pkg/graph/retrieval"
)

const (
	renderMaxChunks        = 3
	renderChunkBudget      = 1200
	renderChunkBudgetFloor = 200
	renderMaxMetadataItems = 4
	renderMaxHighlights    = 10
)

// Metadata keys that describe chunking mechanics rather than content.
var ignoredMetadataKeys = map[string]struct{}{
	"source":             {},
	"source_type":        {},
	"chunk_strategy":     {},
	"chunk_index":        {},
	"token_start":        {},
	"token_end":          {},
	"token_length":       {},
	"content_word_count": {},
}

// RenderGroundingContext flattens a retrieval result into LLM-ready text:
// chunk excerpts first, then entity highlights, then relationship counts.
func RenderGroundingContext(result *retrieval.HybridRetrievalResult) string {
	if result == nil {
		return ""
	}

	sections := make([]string, 0, 3)
	if chunks := summarizeChunks(result.Chunks); chunks != "" {
		sections = append(sections, chunks)
	}
	if highlights := summarizeNodeHighlights(result.StructuredEntities); highlights != "" {
		sections = append(sections, highlights)
	}
	if rels := summarizeRelationships(result.StructuredEntities); rels != "" {
		sections = append(sections, rels)
	}
	return strings.Join(sections, "\n\n")
}

// summarizeChunks renders up to renderMaxChunks chunk excerpts, splitting the
// shared character budget evenly with a floor so a crowded result still shows
// something useful per chunk.
func summarizeChunks(chunks []retrieval.RetrievalChunk) string {
	if len(chunks) == 0 {
		return ""
	}

	selected := chunks
	if len(selected) > renderMaxChunks {
		selected = selected[:renderMaxChunks]
	}
	perChunkLimit := renderChunkBudget / len(selected)
	if perChunkLimit < renderChunkBudgetFloor {
		perChunkLimit = renderChunkBudgetFloor
	}

	lines := []string{"Knowledge chunks:"}
	for _, chunk := range selected {
		header := []string{fmt.Sprintf("[%s] score=%.3f", chunk.ChunkID, chunk.Score)}
		if chunk.SourceID != "" {
			header = append(header, "source="+chunk.SourceID)
		}
		if chunk.SourceType != "" {
			header = append(header, "type="+chunk.SourceType)
		}
		lines = append(lines, strings.Join(header, " "))

		if metadata := summarizeMetadata(chunk.Metadata); metadata != "" {
			lines = append(lines, "Metadata: "+metadata)
		}
		lines = append(lines, "Content: "+excerpt(chunk.Content, perChunkLimit))
	}
	return strings.Join(lines, "\n")
}

// summarizeMetadata picks scalar metadata values, skipping chunking-mechanics
// keys, capped at renderMaxMetadataItems. Keys are visited in sorted order so
// the rendering is stable.
func summarizeMetadata(metadata map[string]interface{}) string {
	if len(metadata) == 0 {
		return ""
	}

	keys := make([]string, 0, len(metadata))
	for key := range metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	details := make([]string, 0, renderMaxMetadataItems)
	for _, key := range keys {
		if _, ignored := ignoredMetadataKeys[key]; ignored {
			continue
		}
		switch metadata[key].(type) {
		case map[string]interface{}, []interface{}:
			continue
		}
		details = append(details, fmt.Sprintf("%s=%v", key, metadata[key]))
		if len(details) >= renderMaxMetadataItems {
			break
		}
	}
	return strings.Join(details, ", ")
}

func summarizeNodeHighlights(entities []retrieval.StructuredEntityContext) string {
	if len(entities) == 0 {
		return ""
	}

	selected := entities
	if len(selected) > renderMaxHighlights {
		selected = selected[:renderMaxHighlights]
	}

	lines := []string{"Entity highlights:"}
	count := 0
	for _, entity := range selected {
		props := entity.Node.Properties
		id, _ := props["id"].(string)
		if id == "" {
			continue
		}

		nodeType := "Unknown"
		if len(entity.Node.Labels) > 0 {
			nodeType = entity.Node.Labels[0]
		} else if typed, ok := props["type"].(string); ok && typed != "" {
			nodeType = typed
		}

		name := id
		if n, ok := props["name"].(string); ok && n != "" {
			name = n
		}

		lines = append(lines, fmt.Sprintf("- %s (%s, id=%s)", name, nodeType, id))
		count++
	}
	if count == 0 {
		return ""
	}
	return strings.Join(lines, "\n")
}

// summarizeRelationships counts relationship types across all entities and
// renders them most-frequent first, each with one example edge.
func summarizeRelationships(entities []retrieval.StructuredEntityContext) string {
	counts := make(map[string]int)
	examples := make(map[string]string)

	for _, entity := range entities {
		sourceName := nodeDisplayName(entity.Node.Properties)
		for _, rel := range entity.Relationships {
			relType := rel.Type
			if relType == "" {
				relType = "UNKNOWN"
			}
			counts[relType]++
			if _, seen := examples[relType]; !seen {
				examples[relType] = fmt.Sprintf("%s -> %s", sourceName, nodeDisplayName(rel.Target.Properties))
			}
		}
	}
	if len(counts) == 0 {
		return ""
	}

	types := make([]string, 0, len(counts))
	for relType := range counts {
		types = append(types, relType)
	}
	sort.Slice(types, func(i, j int) bool {
		if counts[types[i]] != counts[types[j]] {
			return counts[types[i]] > counts[types[j]]
		}
		return types[i] < types[j]
	})

	lines := []string{"Relationships:"}
	for _, relType := range types {
		lines = append(lines, fmt.Sprintf("- %s x%d (%s)", relType, counts[relType], examples[relType]))
	}
	return strings.Join(lines, "\n")
}

func nodeDisplayName(props map[string]interface{}) string {
	if name, ok := props["name"].(string); ok && name != "" {
		return name
	}
	if id, ok := props["id"].(string); ok && id != "" {
		return id
	}
	return "unknown"
}

// excerpt trims the text to the limit, stripping trailing whitespace before
// the marker. Rendering always truncates; the skip-if-JSON rule applies only
// when chunks are stored, not when they are shown.
func excerpt(text string, limit int) string {
	trimmed := strings.TrimSpace(text)
	if limit <= 0 || len([]rune(trimmed)) <= limit {
		return trimmed
	}
	runes := []rune(trimmed)
	cut := strings.TrimRight(string(runes[:limit]), " \t\n\r")
	return cut + "..."
}
