package models

// FrequencySet is a set of frequency codes.
type FrequencySet map[float64]struct{}

// NewFrequencySet returns a set holding codes.
func NewFrequencySet(codes ...float64) FrequencySet {
	s := make(FrequencySet, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

// Add inserts code into the set.
func (s FrequencySet) Add(code float64) {
	s[code] = struct{}{}
}

// Has reports whether code is in the set.
func (s FrequencySet) Has(code float64) bool {
	_, ok := s[code]
	return ok
}

// NameIndex maps display names from a lookup sheet to their frequency codes.
type NameIndex struct {
	// Names lists the display names in first-seen order.
	Names []string `json:"names"`
	// Codes maps a display name to its frequency codes.
	Codes map[string]FrequencySet `json:"-"`
}

// Lookup returns the codes of name. An unknown name yields an empty, non-nil set.
func (n NameIndex) Lookup(name string) FrequencySet {
	if codes, ok := n.Codes[name]; ok {
		return codes
	}
	return FrequencySet{}
}
