package model

// CheckedTriple is one entry of a fact-checking response.
type CheckedTriple struct {
	Triple       Triple           `json:"triple"`
	Result       string           `json:"result"`
	OtherTriples []ExistingTriple `json:"other_triples,omitempty"`
}

// SentenceCheck groups checked triples by the sentence they came from. Flat
// responses are carried as a single group with an empty sentence.
type SentenceCheck struct {
	Sentence string          `json:"sentence"`
	Triples  []CheckedTriple `json:"triples"`
}

// ClassifiedTriple is a candidate triple together with its outcome.
type ClassifiedTriple struct {
	Key      string           `json:"key"`
	Sentence string           `json:"sentence,omitempty"`
	Article  string           `json:"article,omitempty"`
	Triple   Triple           `json:"triple"`
	Outcome  Outcome          `json:"result"`
	Evidence []ExistingTriple `json:"other_triples,omitempty"`
}
