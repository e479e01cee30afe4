package memory

import (
	"time"

	"github.com/ogoldberg/browsecore/internal/kernel"
)

func embeddingForTemplate(sk Skill) []float32 {
	shape := kernel.SkillShape{
		DomainPatterns:    sk.Preconditions.DomainPatterns,
		URLPatterns:       sk.Preconditions.URLPatterns,
		PageType:          sk.Preconditions.PageType,
		RequiredSelectors: sk.Preconditions.RequiredSelectors,
		Actions:           toActionFeatures(sk.ActionSequence),
	}
	return kernel.EmbedSkill(shape)
}

// bootstrapTemplates are generic, domain-agnostic skills seeded into a
// fresh store so retrieval has sensible candidates before any trajectory
// has been recorded (spec.md §3.1: skills are "created on skill-extraction
// from a trajectory or bootstrap/import").
var bootstrapTemplates = []Skill{
	{
		Name:        "dismiss cookie banner",
		Description: "Dismiss a cookie-consent overlay before interacting with the page",
		Preconditions: Preconditions{
			RequiredSelectors: []string{"[class*='cookie']", "[id*='consent']"},
		},
		ActionSequence: []Action{
			{Type: ActionDismissBanner, Selector: "[class*='cookie']", Success: true},
		},
		SourceDomain: "*",
	},
	{
		Name:        "paginate to next page",
		Description: "Advance a list page by clicking its next-page control",
		Preconditions: Preconditions{
			PageType:          PageTypeList,
			RequiredSelectors: []string{"a[rel='next']"},
		},
		ActionSequence: []Action{
			{Type: ActionClick, Selector: "a[rel='next']", Success: true},
			{Type: ActionWait, WaitFor: "networkidle", Success: true},
		},
		SourceDomain: "*",
	},
	{
		Name:        "submit a login form",
		Description: "Fill and submit a standard username/password login form",
		Preconditions: Preconditions{
			PageType:          PageTypeLogin,
			RequiredSelectors: []string{"input[type='password']"},
		},
		ActionSequence: []Action{
			{Type: ActionFill, Selector: "input[type='email'], input[type='text']", Success: true},
			{Type: ActionFill, Selector: "input[type='password']", Success: true},
			{Type: ActionClick, Selector: "button[type='submit']", Success: true},
		},
		SourceDomain: "*",
	},
}

// BootstrapFromTemplates seeds the store with the built-in generic
// templates, skipping any whose name already exists.
func (s *Store) BootstrapFromTemplates() []Skill {
	existing := make(map[string]bool)
	for _, sk := range s.GetAllSkills() {
		existing[sk.Name] = true
	}

	var added []Skill
	for _, tmpl := range bootstrapTemplates {
		if existing[tmpl.Name] {
			continue
		}
		sk := tmpl
		sk.CreatedAt = time.Now()
		sk.UpdatedAt = sk.CreatedAt
		sk.Embedding = embeddingForTemplate(sk)
		_ = s.AddSkill(sk)
		added = append(added, sk)
	}
	return added
}
