package schema

import "go.mongodb.org/mongo-driver/bson"

// Sketch maps each top-level field of a single document to its coarse tag.
// A nil document yields an empty map.
func Sketch(doc bson.Raw) map[string]string {
	props := make(map[string]string)
	if doc == nil {
		return props
	}
	elems, err := doc.Elements()
	if err != nil {
		return props
	}
	for _, el := range elems {
		props[el.Key()] = CoarseTag(el.Value().Type)
	}
	return props
}
