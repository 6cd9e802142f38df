package analyzer

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Finding is one entry of a findings or recommendations list: a short icon
// glyph for UI decoration and the clinical text.
type Finding struct {
	Icon string `json:"icon"`
	Text string `json:"text"`
}

// ManagementPlan is the two-phase plan attached to a diagnosis.
type ManagementPlan struct {
	Immediate []string `json:"immediate,omitempty"`
	LongTerm  []string `json:"longTerm,omitempty"`
}

// IsZero reports whether no plan is present for a label.
func (p ManagementPlan) IsZero() bool {
	return len(p.Immediate) == 0 && len(p.LongTerm) == 0
}

// normalizeLabel produces the knowledge base key for a diagnosis label:
// NFKC, collapsed whitespace, lowercased.
func normalizeLabel(label string) string {
	s := norm.NFKC.String(strings.TrimSpace(label))
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(strings.Join(fields, " "))
}

// FindingsFor returns the radiographic findings for a diagnosis label, or an
// empty list for an unrecognized label.
func FindingsFor(label string) []Finding {
	return append([]Finding(nil), findingsMap[normalizeLabel(label)]...)
}

// RecommendationsFor returns the clinical recommendations for a diagnosis
// label, or an empty list for an unrecognized label.
func RecommendationsFor(label string) []Finding {
	return append([]Finding(nil), recommendationsMap[normalizeLabel(label)]...)
}

// ManagementFor returns the management plan for a diagnosis label. The zero
// plan is returned for an unrecognized label.
func ManagementFor(label string) ManagementPlan {
	p, ok := managementMap[normalizeLabel(label)]
	if !ok {
		return ManagementPlan{}
	}
	return ManagementPlan{
		Immediate: append([]string(nil), p.Immediate...),
		LongTerm:  append([]string(nil), p.LongTerm...),
	}
}

var findingsMap = map[string][]Finding{
	"nil control": {
		{Icon: "✅", Text: "Normal periapical appearance"},
		{Icon: "🦷", Text: "Intact lamina dura"},
		{Icon: "📏", Text: "Normal periodontal ligament space width"},
		{Icon: "🔬", Text: "Healthy bone trabeculation"},
		{Icon: "✨", Text: "No pathological findings"},
		{Icon: "🌿", Text: "Normal root morphology"},
	},
	"condensing osteitis": {
		{Icon: "🔍", Text: "Increased bone density around apex"},
		{Icon: "⭕", Text: "Well-defined radioopaque lesion"},
		{Icon: "🔥", Text: "Associated with chronic low-grade inflammation"},
		{Icon: "🦴", Text: "Localized sclerotic bone reaction"},
		{Icon: "😶", Text: "Usually asymptomatic"},
		{Icon: "📍", Text: "Commonly seen in mandibular posterior teeth"},
	},
	"diffuse lesion": {
		{Icon: "⚠️", Text: "Poorly defined radiolucent area"},
		{Icon: "↔️", Text: "Irregular borders"},
		{Icon: "📐", Text: "Variable size and shape"},
		{Icon: "🦷", Text: "May involve multiple teeth"},
		{Icon: "🔨", Text: "Possible bone destruction pattern"},
		{Icon: "❓", Text: "Unclear demarcation from healthy bone"},
	},
	"periapical abcess": {
		{Icon: "🎯", Text: "Well-defined radiolucent area at apex"},
		{Icon: "💔", Text: "Disrupted lamina dura"},
		{Icon: "📏", Text: "Widened periodontal ligament space"},
		{Icon: "🦴", Text: "Evidence of bone destruction"},
		{Icon: "↔️", Text: "May show diffuse borders in acute phase"},
		{Icon: "💀", Text: "Associated with non-vital tooth"},
	},
	"periapical granuloma": {
		{Icon: "⭕", Text: "Small round/oval radiolucency at apex"},
		{Icon: "📏", Text: "Well-defined borders"},
		{Icon: "📊", Text: "Size typically < 1cm in diameter"},
		{Icon: "💔", Text: "Loss of lamina dura"},
		{Icon: "💀", Text: "Associated with non-vital tooth"},
		{Icon: "🔍", Text: "Uniform radiolucent appearance"},
	},
	"periapical widening": {
		{Icon: "📏", Text: "Increased PDL space width"},
		{Icon: "⚡", Text: "Early stage of periapical pathology"},
		{Icon: "↔️", Text: "Continuous with periodontal ligament"},
		{Icon: "🔥", Text: "May indicate pulpal inflammation"},
		{Icon: "📊", Text: "Usually uniform widening"},
		{Icon: "🦷", Text: "Intact lamina dura"},
	},
	"pericoronitis": {
		{Icon: "🦷", Text: "Partially erupted tooth (usually third molar)"},
		{Icon: "🔬", Text: "Soft tissue opacification over crown"},
		{Icon: "⚠️", Text: "Possible bone loss around crown"},
		{Icon: "📏", Text: "Widened follicular space"},
		{Icon: "📍", Text: "May show impaction pattern"},
		{Icon: "✅", Text: "Adjacent bone appears normal"},
	},
	"radicular cyst": {
		{Icon: "⭕", Text: "Large well-defined radiolucency"},
		{Icon: "📏", Text: "Usually > 1cm in diameter"},
		{Icon: "🔲", Text: "Corticated border"},
		{Icon: "⭕", Text: "Round or oval shape"},
		{Icon: "↗️", Text: "May cause root displacement"},
		{Icon: "💀", Text: "Associated with non-vital tooth"},
	},
}

var recommendationsMap = map[string][]Finding{
	"nil control": {
		{Icon: "📅", Text: "Regular dental check-ups every 6 months"},
		{Icon: "🦷", Text: "Maintain good oral hygiene"},
		{Icon: "📸", Text: "Routine radiographic monitoring"},
		{Icon: "📚", Text: "Patient education on preventive care"},
	},
	"condensing osteitis": {
		{Icon: "⚡", Text: "Pulp vitality testing required"},
		{Icon: "🦷", Text: "Evaluate need for endodontic treatment"},
		{Icon: "🔍", Text: "Regular monitoring of bone density"},
		{Icon: "📊", Text: "Assessment of adjacent teeth"},
		{Icon: "📅", Text: "Follow-up in 3 months"},
	},
	"diffuse lesion": {
		{Icon: "🔍", Text: "Comprehensive clinical examination needed"},
		{Icon: "📸", Text: "Consider CBCT imaging"},
		{Icon: "🔬", Text: "Biopsy may be necessary"},
		{Icon: "👥", Text: "Specialist consultation recommended"},
		{Icon: "📅", Text: "Close monitoring required"},
	},
	"periapical abcess": {
		{Icon: "⚡", Text: "Immediate endodontic intervention required"},
		{Icon: "💊", Text: "Consider antibiotic prescription"},
		{Icon: "🔨", Text: "Possible incision and drainage"},
		{Icon: "🦷", Text: "Root canal treatment needed"},
		{Icon: "📅", Text: "Short-term follow-up essential"},
	},
	"periapical granuloma": {
		{Icon: "🦷", Text: "Root canal treatment indicated"},
		{Icon: "🔍", Text: "Regular radiographic monitoring"},
		{Icon: "📅", Text: "Follow-up every 3-6 months"},
		{Icon: "📊", Text: "Assessment of healing progress"},
		{Icon: "👥", Text: "Endodontist consultation if needed"},
	},
	"periapical widening": {
		{Icon: "⚡", Text: "Pulp vitality testing essential"},
		{Icon: "🔍", Text: "Identify cause of inflammation"},
		{Icon: "🦷", Text: "Consider occlusal adjustment"},
		{Icon: "📅", Text: "Regular monitoring needed"},
		{Icon: "📊", Text: "Track changes over time"},
	},
	"pericoronitis": {
		{Icon: "🧼", Text: "Local irrigation and debridement"},
		{Icon: "💊", Text: "Antibiotics if systemically involved"},
		{Icon: "💉", Text: "Pain management required"},
		{Icon: "✂️", Text: "Consider surgical extraction"},
		{Icon: "📅", Text: "Short-term follow-up needed"},
	},
	"radicular cyst": {
		{Icon: "🦷", Text: "Root canal treatment required"},
		{Icon: "✂️", Text: "Surgical enucleation may be needed"},
		{Icon: "🔬", Text: "Histopathological examination"},
		{Icon: "📸", Text: "Regular radiographic monitoring"},
		{Icon: "👥", Text: "Oral surgeon consultation recommended"},
	},
}

var managementMap = map[string]ManagementPlan{
	"nil control": {
		Immediate: []string{
			"Document baseline radiographic appearance",
			"Record current dental status",
			"Check oral hygiene status",
		},
		LongTerm: []string{
			"Regular dental check-ups",
			"Preventive care measures",
			"Patient education",
		},
	},
	"condensing osteitis": {
		Immediate: []string{
			"Pulp vitality testing",
			"Pain assessment",
			"Evaluate need for endodontic treatment",
		},
		LongTerm: []string{
			"Monitor bone density changes",
			"Regular radiographic assessment",
			"Address primary inflammation source",
		},
	},
	"diffuse lesion": {
		Immediate: []string{
			"Comprehensive examination",
			"Additional imaging (CBCT)",
			"Consider biopsy",
		},
		LongTerm: []string{
			"Regular monitoring",
			"Specialist referral if needed",
			"Treatment based on biopsy results",
		},
	},
	"periapical abcess": {
		Immediate: []string{
			"Emergency drainage if needed",
			"Antibiotic prescription",
			"Pain management",
		},
		LongTerm: []string{
			"Complete root canal treatment",
			"Regular follow-up",
			"Monitor healing progress",
		},
	},
	"periapical granuloma": {
		Immediate: []string{
			"Start root canal treatment",
			"Pain management if needed",
			"Assess tooth restorability",
		},
		LongTerm: []string{
			"Complete endodontic therapy",
			"Regular radiographic assessment",
			"Monitor healing",
		},
	},
	"periapical widening": {
		Immediate: []string{
			"Pulp vitality testing",
			"Identify inflammation cause",
			"Occlusal analysis",
		},
		LongTerm: []string{
			"Monitor PDL width changes",
			"Regular follow-up",
			"Address contributing factors",
		},
	},
	"pericoronitis": {
		Immediate: []string{
			"Local debridement",
			"Prescribe antibiotics if needed",
			"Pain management",
		},
		LongTerm: []string{
			"Evaluate for extraction",
			"Improve oral hygiene",
			"Regular monitoring",
		},
	},
	"radicular cyst": {
		Immediate: []string{
			"Start root canal treatment",
			"Plan surgical intervention",
			"Pain management if needed",
		},
		LongTerm: []string{
			"Complete endodontic therapy",
			"Surgical enucleation",
			"Regular radiographic monitoring",
		},
	},
}
