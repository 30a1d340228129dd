// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

package query

// Record is a nested row as decoded from the REST API.
type Record = map[string]any

// metadataKey holds per-record type and URL information.
const metadataKey = "attributes"

// Flatten turns a nested record into dotted-path keys. Any "attributes" map is
// dropped at every depth. When two paths collide the one visited later wins;
// map iteration order makes that choice unspecified.
func Flatten(record Record) Record {
	out := make(Record, len(record))
	flattenInto(out, "", record)
	return out
}

func flattenInto(out Record, prefix string, m map[string]any) {
	for k, v := range m {
		if k == metadataKey {
			if _, isMap := v.(map[string]any); isMap {
				continue
			}
		}
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			flattenInto(out, key, nested)
			continue
		}
		out[key] = v
	}
}

// FlattenAll flattens every record, preserving order.
func FlattenAll(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = Flatten(r)
	}
	return out
}
