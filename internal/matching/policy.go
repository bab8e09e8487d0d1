package matching

// Default thresholds, expressed as 0-100 similarity scores.
const (
	DefaultTitleThreshold         = 85
	DefaultStrictTitleThreshold   = 92
	DefaultCreatorThreshold       = 80
	DefaultStrictCreatorThreshold = 90
	DefaultSequelCreatorThreshold = 100
	DefaultSuggestTitleThreshold  = 80
	DefaultSuggestLooseThreshold  = 70
	DefaultFallbackScanCeiling    = 5000
	DefaultMinSubstringLength     = 5
)

// Policy centralizes matching thresholds and scan bounds.
type Policy struct {
	TitleThreshold         float64
	StrictTitleThreshold   float64
	CreatorThreshold       float64
	StrictCreatorThreshold float64
	SequelCreatorThreshold float64
	SuggestTitleThreshold  float64
	SuggestLooseThreshold  float64
	FallbackScanCeiling    int
	MinSubstringLength     int
}

// DefaultPolicy returns the stock thresholds.
func DefaultPolicy() Policy {
	return Policy{
		TitleThreshold:         DefaultTitleThreshold,
		StrictTitleThreshold:   DefaultStrictTitleThreshold,
		CreatorThreshold:       DefaultCreatorThreshold,
		StrictCreatorThreshold: DefaultStrictCreatorThreshold,
		SequelCreatorThreshold: DefaultSequelCreatorThreshold,
		SuggestTitleThreshold:  DefaultSuggestTitleThreshold,
		SuggestLooseThreshold:  DefaultSuggestLooseThreshold,
		FallbackScanCeiling:    DefaultFallbackScanCeiling,
		MinSubstringLength:     DefaultMinSubstringLength,
	}
}

// Normalized replaces out-of-range values with defaults.
func (p Policy) Normalized() Policy {
	d := DefaultPolicy()

	fix := func(v *float64, def float64) {
		if *v <= 0 || *v > 100 {
			*v = def
		}
	}
	fix(&p.TitleThreshold, d.TitleThreshold)
	fix(&p.StrictTitleThreshold, d.StrictTitleThreshold)
	fix(&p.CreatorThreshold, d.CreatorThreshold)
	fix(&p.StrictCreatorThreshold, d.StrictCreatorThreshold)
	fix(&p.SequelCreatorThreshold, d.SequelCreatorThreshold)
	fix(&p.SuggestTitleThreshold, d.SuggestTitleThreshold)
	fix(&p.SuggestLooseThreshold, d.SuggestLooseThreshold)

	if p.FallbackScanCeiling <= 0 {
		p.FallbackScanCeiling = d.FallbackScanCeiling
	}
	if p.MinSubstringLength <= 0 {
		p.MinSubstringLength = d.MinSubstringLength
	}
	return p
}

// TitlesMatch applies the lenient tier at the policy threshold.
func (p Policy) TitlesMatch(a, b string) bool {
	return titlesMatch(a, b, p.TitleThreshold, p.MinSubstringLength)
}

// TitlesMatchStrict applies the strict tier at the policy threshold.
func (p Policy) TitlesMatchStrict(a, b string) bool {
	return titlesMatch(a, b, p.StrictTitleThreshold, p.MinSubstringLength)
}

// CreatorsMatch applies the creator matcher at the default policy threshold.
func (p Policy) CreatorsMatch(a, b string) bool {
	return CreatorsMatch(a, b, p.CreatorThreshold)
}

// SameItem is the lenient duplicate test: lenient title plus default creator match.
func (p Policy) SameItem(titleA, creatorA, titleB, creatorB string) bool {
	return p.TitlesMatch(titleA, titleB) && p.CreatorsMatch(creatorA, creatorB)
}

// StrictDuplicate is the bounded-scan test. Titles must pass the strict tier
// and creators the strict creator threshold. When the titles differ only by a
// trailing sequel number the creator bar rises to SequelCreatorThreshold, so
// numbered sequels need stronger corroboration before they merge.
func (p Policy) StrictDuplicate(titleA, creatorA, titleB, creatorB string) bool {
	if !p.TitlesMatchStrict(titleA, titleB) {
		return false
	}
	threshold := p.StrictCreatorThreshold
	if SequelVariants(titleA, titleB) {
		threshold = p.SequelCreatorThreshold
	}
	return CreatorsMatch(creatorA, creatorB, threshold)
}
