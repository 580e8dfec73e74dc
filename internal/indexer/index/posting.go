package index

// Posting records how often a term occurs across all indexed fields of one
// product.
type Posting struct {
	ProductID uint32 `json:"product_id"`
	Frequency int    `json:"frequency"`
}

// PostingList holds at most one Posting per product.
type PostingList []Posting

// Stats summarises the size of an index.
type Stats struct {
	Terms    int `json:"terms"`
	Products int `json:"products"`
}

// termFrequencies counts every term of the token stream.
func termFrequencies(terms []string) map[string]int {
	tf := make(map[string]int, len(terms))
	for _, term := range terms {
		tf[term]++
	}
	return tf
}
