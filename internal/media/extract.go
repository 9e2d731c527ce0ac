// Package media locates the generated asset URL inside the provider's
// loosely-typed result payloads. The provider returns a different shape per
// model family, so extraction is an ordered list of candidates tried in
// sequence; the first hit wins.
package media

// An extractor pulls a candidate URL out of a raw payload, returning "" on miss.
type extractor func(payload map[string]any) string

// Extraction order is part of the contract: given a payload with several
// candidate fields populated, the same one must win every time.
var extractors = []extractor{
	path("data", "images", "0", "url"),
	path("data", "video", "url"),
	path("data", "videos", "0", "url"),
	path("images", "0", "url"),
	path("video", "url"),
	path("videos", "0", "url"),
	path("output", "0", "url"),
}

// URL returns the media URL embedded in payload, or "" when none of the known
// shapes match.
func URL(payload map[string]any) string {
	if payload == nil {
		return ""
	}
	for _, ex := range extractors {
		if u := ex(payload); u != "" {
			return u
		}
	}
	return ""
}

// path builds an extractor that walks nested maps and slices. A segment of
// "0" indexes the first element of a slice; anything else is a map key.
func path(segments ...string) extractor {
	return func(payload map[string]any) string {
		var cur any = payload
		for _, seg := range segments {
			switch node := cur.(type) {
			case map[string]any:
				cur = node[seg]
			case []any:
				if seg != "0" || len(node) == 0 {
					return ""
				}
				cur = node[0]
			default:
				return ""
			}
		}
		if s, ok := cur.(string); ok {
			return s
		}
		return ""
	}
}
