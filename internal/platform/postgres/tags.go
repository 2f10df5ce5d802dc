package postgres

import "encoding/json"

// Insight tags are stored as a JSONB array. A nil slice round-trips as
// SQL NULL.

func tagsToArray(tags []string) any {
	if len(tags) == 0 {
		return nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return nil
	}
	return data
}

func parseTagArray(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return nil
	}
	return tags
}
