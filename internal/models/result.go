package models

// WordSimilarity is the cosine similarity between the embeddings of two words.
// When one of the embeddings could not be computed, Error holds the reason and
// Similarity is 0.
type WordSimilarity struct {
	Word1      string  `json:"word1"`
	Word2      string  `json:"word2"`
	Similarity float64 `json:"similarity"`
	Error      string  `json:"error,omitempty"`
}

// ItemFailure reports a single quote that could not be embedded or stored during bulk load.
type ItemFailure struct {
	Index  int    `json:"index"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

// InitResult reports the outcome of loading the corpus into the store.
// Status is "success" when quotes were loaded, "skipped" when the store
// already had quotes and force was not set.
type InitResult struct {
	Status   string        `json:"status"`
	Message  string        `json:"message"`
	Count    int           `json:"count"`
	Failures []ItemFailure `json:"failures,omitempty"`
}

// CleanResult reports the outcome of clearing the store.
type CleanResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Removed int    `json:"removed"`
}

// HealthReport is the health of the service's dependencies. Status is
// "healthy" when every service probe passed, otherwise "unhealthy". Each
// entry in Services is "ok" or "error: " followed by the probe error text.
type HealthReport struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}
