package normalizer

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"tracelens/internal/clients/tracing"
	"tracelens/internal/models"
)

// classify converts one raw span into its normalized domain form: a
// semantic kind, extracted token usage, input/output payloads, error
// signals, and all tags folded into metadata.
func classify(raw tracing.RawSpan) models.Span {
	meta := foldTags(raw.Tags)

	span := models.Span{
		ID:          raw.SpanID,
		ParentID:    parentID(raw),
		Name:        raw.OperationName,
		Kind:        spanKind(raw.OperationName, meta),
		StartTimeUS: raw.StartTimeUS,
		DurationUS:  raw.DurationUS,
		StartTime:   time.UnixMicro(raw.StartTimeUS).UTC(),
		EndTime:     time.UnixMicro(raw.StartTimeUS + raw.DurationUS).UTC(),
		Status:      models.StatusSuccess,
		Metadata:    meta,
	}

	if errorFlagSet(meta) {
		span.Status = models.StatusFailed
	}
	if msg, ok := firstString(meta, errorMessageKeys); ok {
		span.Error = msg
	}

	span.TokenUsage = extractTokenUsage(meta)

	// Absent payloads stay nil so consumers can tell "no data" from
	// "empty data".
	if v, ok := firstValue(meta, inputKeys); ok {
		span.Input = v
	}
	if v, ok := firstValue(meta, outputKeys); ok {
		span.Output = v
	}

	return span
}

// foldTags collapses the ordered tag list into a mapping; a later
// duplicate key within the same span overwrites the earlier value.
func foldTags(tags []tracing.Tag) map[string]any {
	meta := make(map[string]any, len(tags))
	for _, tag := range tags {
		meta[tag.Key] = tag.Value
	}
	return meta
}

// parentID returns the first parent reference, or empty for a root
// candidate. Cross-trace references are resolved by the normalizer, never
// followed here.
func parentID(raw tracing.RawSpan) string {
	if len(raw.References) == 0 {
		return ""
	}
	return raw.References[0].SpanID
}

// spanKind assigns the semantic type, first match wins.
func spanKind(operationName string, meta map[string]any) string {
	if hasAnyKey(meta, genSystemKeys) {
		return models.KindLLM
	}
	if hasAnyKey(meta, toolNameKeys) || strings.HasPrefix(operationName, toolOpPrefix) {
		return models.KindTool
	}
	if hasAnyKey(meta, agentNameKeys) || strings.HasPrefix(operationName, agentOpPrefix) {
		return models.KindAgent
	}
	return models.KindChain
}

// extractTokenUsage builds a usage record when at least one token count
// is present; missing components default to 0. Each component reads only
// its first matching alias so generic and legacy keys are never summed.
func extractTokenUsage(meta map[string]any) *models.TokenUsage {
	prompt, okP := firstInt(meta, promptTokenKeys)
	completion, okC := firstInt(meta, completionTokenKeys)
	total, okT := firstInt(meta, totalTokenKeys)
	if !okP && !okC && !okT {
		return nil
	}
	return &models.TokenUsage{
		Prompt:     prompt,
		Completion: completion,
		Total:      total,
	}
}

// errorFlagSet reports whether the span carries a boolean-true error tag.
// String renderings of true are accepted; some backends stringify tag
// values.
func errorFlagSet(meta map[string]any) bool {
	v, ok := meta[errorFlagKey]
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true"
	default:
		return false
	}
}

func hasAnyKey(meta map[string]any, keys []string) bool {
	for _, k := range keys {
		if _, ok := meta[k]; ok {
			return true
		}
	}
	return false
}

func firstValue(meta map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := meta[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func firstString(meta map[string]any, keys []string) (string, bool) {
	v, ok := firstValue(meta, keys)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// firstInt reads the first matching key as an integer, tolerating the
// numeric and string shapes JSON decoding produces.
func firstInt(meta map[string]any, keys []string) (int, bool) {
	v, ok := firstValue(meta, keys)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
