package kernel

// PageContext is the leaf input to the Page Context embedding function
// (spec.md §4.1): URL, domain, detected page type, page-shape flags,
// available selectors, content length and language.
type PageContext struct {
	URL                string
	Domain             string
	PageType           PageType
	HasForm            bool
	HasPagination      bool
	HasTable           bool
	ContentLength      int
	AvailableSelectors []string
	Language           string
}

// PageType enumerates spec.md §3.1's Preconditions.pageType domain.
type PageType string

const (
	PageTypeList    PageType = "list"
	PageTypeDetail  PageType = "detail"
	PageTypeForm    PageType = "form"
	PageTypeSearch  PageType = "search"
	PageTypeLogin   PageType = "login"
	PageTypeUnknown PageType = "unknown"
)

// pageTypeOrder fixes the one-hot ordering for slots 16..23.
var pageTypeOrder = []PageType{
	PageTypeList, PageTypeDetail, PageTypeForm, PageTypeSearch, PageTypeLogin, PageTypeUnknown,
}

// ActionType enumerates spec.md §3.1's Action.type domain.
type ActionType string

const (
	ActionNavigate      ActionType = "navigate"
	ActionClick         ActionType = "click"
	ActionFill          ActionType = "fill"
	ActionSelect        ActionType = "select"
	ActionScroll        ActionType = "scroll"
	ActionWait          ActionType = "wait"
	ActionExtract       ActionType = "extract"
	ActionDismissBanner ActionType = "dismiss_banner"
)

// actionTypeOrder fixes the histogram ordering used in slots 32..47.
var actionTypeOrder = []ActionType{
	ActionNavigate, ActionClick, ActionFill, ActionSelect,
	ActionScroll, ActionWait, ActionExtract, ActionDismissBanner,
}

// ActionFeature is the minimal shape of an Action needed for embedding: its
// type and whether it succeeded. The memory package's Action carries more
// fields (selector, value, timestamps); it projects down to this shape
// when asking the kernel for a skill embedding.
type ActionFeature struct {
	Type    ActionType
	Success bool
}

// SkillShape is the leaf input to the Skill embedding function: its
// preconditions plus its action sequence (spec.md §4.1 "Skill definition").
type SkillShape struct {
	DomainPatterns    []string
	URLPatterns       []string
	PageType          PageType
	RequiredSelectors []string
	Language          string
	Actions           []ActionFeature
}

// Dim is the fixed embedding dimensionality the slot layout in spec.md
// §4.1 is defined against. Configuration may request embeddingDim=64 to
// confirm this, but the layout itself is not parameterizable — spec.md
// is explicit that "embedding length = configured dim" and the default
// (and only supported) dim is 64.
const Dim = 64
