package kernel

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/ogoldberg/browsecore/internal/logging"
)

var numericSegment = regexp.MustCompile(`^[0-9]+$`)

// EmbedPageContext produces the deterministic Dim-length unit vector for a
// Page Context, per spec.md §4.1's slot layout. Never fails: malformed URLs
// fall back to empty URL-structure features, and an all-zero input yields
// an all-zero vector.
func EmbedPageContext(ctx PageContext) []float32 {
	timer := logging.StartTimer(logging.CategoryKernel, "EmbedPageContext")
	defer timer.Stop()

	v := make([]float32, Dim)

	domainSlots(v, ctx.Domain)
	urlStructureSlots(v, ctx.URL)
	pageTypeSlots(v, ctx.PageType)
	pageShapeSlots(v, ctx.HasForm, ctx.HasPagination, ctx.HasTable, ctx.ContentLength, ctx.AvailableSelectors)
	actionSlots(v, nil)
	selectorSlots(v, ctx.AvailableSelectors)
	languageSlots(v, ctx.Language)

	return normalize(v)
}

// EmbedSkill produces the deterministic Dim-length unit vector for a
// skill's preconditions and action sequence.
func EmbedSkill(s SkillShape) []float32 {
	timer := logging.StartTimer(logging.CategoryKernel, "EmbedSkill")
	defer timer.Stop()

	v := make([]float32, Dim)

	domain := ""
	if len(s.DomainPatterns) > 0 {
		domain = s.DomainPatterns[0]
	}
	domainSlots(v, domain)

	urlPattern := ""
	if len(s.URLPatterns) > 0 {
		urlPattern = s.URLPatterns[0]
	}
	urlStructureSlots(v, urlPattern)

	pageTypeSlots(v, s.PageType)

	hasForm := containsAny(s.RequiredSelectors, "form", "input", "button")
	hasTable := containsAny(s.RequiredSelectors, "table", "tr", "td")
	hasPagination := containsAny(s.RequiredSelectors, "pagination", "next", "page")
	pageShapeSlots(v, hasForm, hasPagination, hasTable, 0, s.RequiredSelectors)

	actionSlots(v, s.Actions)
	selectorSlots(v, s.RequiredSelectors)
	languageSlots(v, s.Language)

	return normalize(v)
}

func containsAny(selectors []string, needles ...string) bool {
	for _, sel := range selectors {
		lower := strings.ToLower(sel)
		for _, n := range needles {
			if strings.Contains(lower, n) {
				return true
			}
		}
	}
	return false
}

// domainSlots fills slots 0..7: TLD class flags + hashed second-level spread.
func domainSlots(v []float32, domain string) {
	if domain == "" {
		return
	}
	lower := strings.ToLower(domain)
	isGov := strings.HasSuffix(lower, ".gov")
	isEdu := strings.HasSuffix(lower, ".edu")

	if isGov {
		v[0] = 1.0
	}
	if isEdu {
		v[1] = 1.0
	}
	if !isGov && !isEdu {
		v[2] = 1.0
	}

	secondLevel := secondLevelDomain(lower)
	spread := hashedSpread(secondLevel, 5)
	copy(v[3:8], spread)
}

// secondLevelDomain extracts the registrable-ish label before the TLD,
// e.g. "example" from "www.example.com". Best-effort: no PSL lookup.
func secondLevelDomain(domain string) string {
	parts := strings.Split(domain, ".")
	if len(parts) < 2 {
		return domain
	}
	return parts[len(parts)-2]
}

// urlStructureSlots fills slots 8..15. Malformed URLs fall back to zeros.
func urlStructureSlots(v []float32, rawURL string) {
	if rawURL == "" {
		return
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return
	}

	path := u.Path
	depth := 0
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if seg != "" {
			depth++
		}
	}
	v[8] = float32(math.Min(float64(depth), 5)) / 5.0

	if u.RawQuery != "" {
		v[9] = 1.0
	}
	if u.Fragment != "" {
		v[10] = 1.0
	}

	lowerPath := strings.ToLower(path)
	if strings.Contains(lowerPath, "search") {
		v[11] = 1.0
	}
	if strings.Contains(lowerPath, "login") {
		v[12] = 1.0
	}
	if strings.Contains(lowerPath, "list") {
		v[13] = 1.0
	}
	if strings.Contains(lowerPath, "form") {
		v[14] = 1.0
	}

	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if numericSegment.MatchString(seg) {
			v[15] = 1.0
			break
		}
	}
}

// pageTypeSlots fills slots 16..23 with a one-hot over the six page types.
func pageTypeSlots(v []float32, pt PageType) {
	if pt == "" {
		return
	}
	for i, candidate := range pageTypeOrder {
		if candidate == pt {
			v[16+i] = 1.0
			return
		}
	}
}

// pageShapeSlots fills slots 24..31: shape booleans, content-length
// bucket, and four selector-presence flags.
func pageShapeSlots(v []float32, hasForm, hasPagination, hasTable bool, contentLength int, selectors []string) {
	if hasForm {
		v[24] = 1.0
	}
	if hasPagination {
		v[25] = 1.0
	}
	if hasTable {
		v[26] = 1.0
	}
	v[27] = float32(math.Min(float64(contentLength), 5000)) / 5000.0

	v[28] = presenceFlag(selectors, "table")
	v[29] = presenceFlag(selectors, "form")
	v[30] = presenceFlag(selectors, "button")
	v[31] = presenceFlag(selectors, "input")
}

func presenceFlag(selectors []string, needle string) float32 {
	for _, sel := range selectors {
		if strings.Contains(strings.ToLower(sel), needle) {
			return 1.0
		}
	}
	return 0.0
}

// actionSlots fills slots 32..47: a histogram of the 8 action types
// normalized by max count (32..39), sequence length and success ratio
// (40..41), and ratio-of-total for the first six action types (42..47).
func actionSlots(v []float32, actions []ActionFeature) {
	if len(actions) == 0 {
		return
	}

	counts := make(map[ActionType]int, len(actionTypeOrder))
	successCount := 0
	for _, a := range actions {
		counts[a.Type]++
		if a.Success {
			successCount++
		}
	}

	maxCount := 0
	for _, t := range actionTypeOrder {
		if counts[t] > maxCount {
			maxCount = counts[t]
		}
	}
	if maxCount > 0 {
		for i, t := range actionTypeOrder {
			v[32+i] = float32(counts[t]) / float32(maxCount)
		}
	}

	v[40] = float32(math.Min(float64(len(actions)), 20)) / 20.0
	v[41] = float32(successCount) / float32(len(actions))

	total := float32(len(actions))
	for i := 0; i < 6 && i < len(actionTypeOrder); i++ {
		v[42+i] = float32(counts[actionTypeOrder[i]]) / total
	}
}

// selectorSlots fills slots 48..55: a hashed spread of the joined selector
// set, giving a fuzzy fingerprint of which selectors a page/skill uses.
func selectorSlots(v []float32, selectors []string) {
	if len(selectors) == 0 {
		return
	}
	joined := strings.Join(selectors, "|")
	spread := hashedSpread(joined, 8)
	copy(v[48:56], spread)
}

// languageSlots fills slots 56..59: a known-language flag plus a 3-bit
// hashed spread of the language code.
func languageSlots(v []float32, language string) {
	if language == "" {
		return
	}
	lower := strings.ToLower(language)
	known := map[string]bool{"en": true, "es": true, "pt": true, "fr": true, "it": true, "de": true}
	if known[lower] {
		v[56] = 1.0
	}
	spread := hashedSpread(lower, 3)
	copy(v[57:60], spread)
}

// normalize L2-normalizes v. An all-zero vector stays all-zero rather than
// producing NaN (spec.md §4.1 P1).
func normalize(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return v
	}
	norm := math.Sqrt(sumSq)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// CosineSimilarity returns the cosine similarity of a and b, in [-1, 1].
// Returns 0 when either vector has zero norm, never NaN (spec.md §4.1 P2).
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// SimilarityResult is one scored entry from FindTopK.
type SimilarityResult struct {
	Index      int
	Similarity float64
}

// FindTopK returns the indices of the top K most similar vectors in corpus
// to query, ranked by cosine similarity descending. The corpus is assumed
// bounded (spec.md Non-goals exclude real ANN indexing), so this is a
// straightforward linear scan and sort.
func FindTopK(query []float32, corpus [][]float32, k int) []SimilarityResult {
	if k <= 0 {
		k = 10
	}

	results := make([]SimilarityResult, 0, len(corpus))
	for i, vec := range corpus {
		results = append(results, SimilarityResult{Index: i, Similarity: CosineSimilarity(query, vec)})
	}

	sortDescending(results)

	if len(results) > k {
		results = results[:k]
	}
	return results
}

func sortDescending(results []SimilarityResult) {
	for i := 0; i < len(results); i++ {
		for j := i + 1; j < len(results); j++ {
			if results[j].Similarity > results[i].Similarity {
				results[i], results[j] = results[j], results[i]
			}
		}
	}
}

// FormatFloat is a small helper used by callers building log fields; kept
// here to avoid importing strconv at every call site.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}
