package domain

// Record is one labeled text sample.
// Feature0 and Feature1 carry free text, Feature2 the ground-truth label.
type Record struct {
	Feature0 string `json:"feature0"`
	Feature1 string `json:"feature1"`
	Feature2 string `json:"feature2"`
}

// Text returns the two text fields joined by a single space.
func (r Record) Text() string { return r.Feature0 + " " + r.Feature1 }

// Label returns the ground-truth label.
func (r Record) Label() string { return r.Feature2 }

// Batch is the ordered set of records received in one transport delivery.
type Batch struct {
	Records []Record
	// Skipped counts records dropped while parsing the delivery.
	Skipped int
}

// Len returns the number of evaluable records.
func (b Batch) Len() int { return len(b.Records) }

// Empty reports whether the batch carries nothing to evaluate.
func (b Batch) Empty() bool { return len(b.Records) == 0 }

// Labels returns the label strings in record order.
func (b Batch) Labels() []string {
	out := make([]string, len(b.Records))
	for i, r := range b.Records {
		out[i] = r.Label()
	}
	return out
}
