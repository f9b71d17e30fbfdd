package types

// Category classifies an instruction by the configuration source it was
// derived from. The set is closed: the priority manager and the template
// engine both key off it, so parsers must not invent new categories.
type Category string

const (
	CategoryGeneral    Category = "general"
	CategoryFramework  Category = "framework"
	CategoryLanguage   Category = "language"
	CategoryLint       Category = "lint"
	CategoryFormatting Category = "formatting"
	CategoryUser       Category = "user"
)

// Priority bands. Higher wins on conflict. Instructions carry one of these
// unless their frontmatter sets an explicit priority, which overrides the
// band (see Frontmatter.Priority).
const (
	// PriorityUserOverride is absolute: user-authored guidance always beats
	// machine-derived guidance.
	PriorityUserOverride = 1000

	// PriorityOfficialDocs is for instructions sourced from official
	// framework documentation.
	PriorityOfficialDocs = 900

	// PriorityProjectIndex is the band of the generated index document.
	PriorityProjectIndex = 200

	// PriorityFramework is for framework-specific guidance (Angular, React, ...).
	PriorityFramework = 100

	// PriorityLanguage is for language-level guidance (TypeScript strictness,
	// module conventions, ...).
	PriorityLanguage = 50

	// PriorityLint is for instructions derived from lint rules.
	PriorityLint = 30

	// PriorityFormatting is for instructions derived from formatter options.
	PriorityFormatting = 20
)

// BandFor returns the priority band for a category. It is total: every
// member of the closed Category set maps to a band, and anything else
// (which would indicate a parser bug) falls back to the lowest band rather
// than panicking.
func BandFor(c Category) int {
	switch c {
	case CategoryUser:
		return PriorityUserOverride
	case CategoryGeneral:
		return PriorityProjectIndex
	case CategoryFramework:
		return PriorityFramework
	case CategoryLanguage:
		return PriorityLanguage
	case CategoryLint:
		return PriorityLint
	case CategoryFormatting:
		return PriorityFormatting
	default:
		return PriorityFormatting
	}
}

// Frontmatter holds the recognized metadata fields an instruction may carry.
// It is a fixed set of optional fields with explicit zero-value defaults,
// never a free-form map: loosely-typed configuration stops at the parser
// boundary.
type Frontmatter struct {
	// ApplyTo lists glob patterns declaring which files the instruction is
	// relevant to. Empty means "applies everywhere".
	ApplyTo []string `yaml:"applyTo,omitempty"`

	// Priority, when > 0, overrides the category band. 0 means "use the band".
	Priority int `yaml:"priority,omitempty"`

	// UserOverride marks user-authored instructions. These are pinned to
	// PriorityUserOverride regardless of any other field.
	UserOverride bool `yaml:"userOverride,omitempty"`

	// Description is a one-line summary used in the generated index.
	Description string `yaml:"description,omitempty"`

	// Framework names the framework this instruction is specific to
	// (lowercase, e.g. "angular"). Set only by the framework parser and the
	// docs provider.
	Framework string `yaml:"framework,omitempty"`

	// Version is the detected framework version, if known.
	Version string `yaml:"version,omitempty"`
}

// ParsedInstruction is the normalized output of a single config source
// parser. Instances are produced fresh on every generation run and are
// immutable after creation.
type ParsedInstruction struct {
	// Content is the human-readable instruction text.
	Content string

	// Frontmatter carries the recognized metadata fields.
	Frontmatter Frontmatter

	// Category is the origin category assigned by the parser.
	Category Category

	// Concerns names the configuration concerns this instruction addresses
	// (e.g. "quotes", "semicolons"). Used for semantic conflict detection:
	// two instructions sharing a concern but disagreeing in content cannot
	// both be emitted.
	Concerns []string
}

// PrioritizedInstruction is a ParsedInstruction after the priority manager
// has resolved its destination and rank. Computed once per run, consumed
// once by the template engine, never persisted.
type PrioritizedInstruction struct {
	ParsedInstruction

	// FilePath is the destination document path relative to the workspace
	// root. A deterministic function of category (and framework name for
	// the framework category).
	FilePath string

	// Priority is the resolved integer priority. Higher wins.
	Priority int
}

// ConflictNote records a semantic conflict resolution: a lower-priority
// instruction dropped because a higher-priority one addressed the same
// concern with different guidance. Informational, not an error.
type ConflictNote struct {
	Concern         string
	KeptCategory    Category
	KeptPriority    int
	DroppedCategory Category
	DroppedPriority int
	DroppedContent  string
	Reason          string
}

// FrameworkSignal is a precomputed framework detection result handed to the
// framework parser. The core never inspects source files itself.
type FrameworkSignal struct {
	Name       string
	Version    string
	Confidence float64
	Features   []string
}
