package history

import (
	"encoding/json"
	"fmt"
)

// Encode serializes the collection as a JSON array.
func Encode(c Collection) ([]byte, error) {
	if c == nil {
		c = Collection{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal history: %w", err)
	}
	return data, nil
}

// Decode parses a serialized collection. Corrupt input yields an empty
// collection together with the reason, so callers can log it and carry on.
func Decode(data []byte) (Collection, error) {
	if len(data) == 0 {
		return Collection{}, nil
	}

	var c Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return Collection{}, fmt.Errorf("failed to unmarshal history: %w", err)
	}

	seen := make(map[string]struct{}, len(c))
	for i, s := range c {
		if s.ID == "" {
			return Collection{}, fmt.Errorf("history entry %d has no id", i)
		}
		if _, dup := seen[s.ID]; dup {
			return Collection{}, fmt.Errorf("history entry %d duplicates id %s", i, s.ID)
		}
		seen[s.ID] = struct{}{}
	}

	if c == nil {
		c = Collection{}
	}
	return c, nil
}
