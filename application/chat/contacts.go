package chat

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// LoadContactLists decodes contact lists from a JSON object mapping
// user ids to arrays of user ids:
//
//	{"1": [2, 3], "2": [1]}
//
// Keys that are not user ids and entries that are not user ids are skipped.
func LoadContactLists(r io.Reader) (map[ID][]ID, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decoding contact lists")
	}

	lists := make(map[ID][]ID, len(raw))
	for key, value := range raw {
		id, ok := parseID(key)
		if !ok {
			continue
		}
		entries, ok := value.([]any)
		if !ok {
			continue
		}

		list := make([]ID, 0, len(entries))
		for _, entry := range entries {
			n, ok := entry.(json.Number)
			if !ok {
				continue
			}
			if other, ok := parseID(n.String()); ok {
				list = append(list, other)
			}
		}
		lists[id] = list
	}

	return lists, nil
}

func parseID(s string) (ID, bool) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return ID(n), true
}
