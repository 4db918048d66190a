package schema

import "go.mongodb.org/mongo-driver/bson/bsontype"

// TypeTag returns the MongoDB $type alias for a BSON type.
func TypeTag(t bsontype.Type) string {
	switch t {
	case bsontype.Double:
		return "double"
	case bsontype.String:
		return "string"
	case bsontype.EmbeddedDocument:
		return "object"
	case bsontype.Array:
		return "array"
	case bsontype.Binary:
		return "binData"
	case bsontype.Undefined:
		return "undefined"
	case bsontype.ObjectID:
		return "objectId"
	case bsontype.Boolean:
		return "bool"
	case bsontype.DateTime:
		return "date"
	case bsontype.Null:
		return "null"
	case bsontype.Regex:
		return "regex"
	case bsontype.DBPointer:
		return "dbPointer"
	case bsontype.JavaScript:
		return "javascript"
	case bsontype.Symbol:
		return "symbol"
	case bsontype.CodeWithScope:
		return "javascriptWithScope"
	case bsontype.Int32:
		return "int"
	case bsontype.Timestamp:
		return "timestamp"
	case bsontype.Int64:
		return "long"
	case bsontype.Decimal128:
		return "decimal"
	case bsontype.MinKey:
		return "minKey"
	case bsontype.MaxKey:
		return "maxKey"
	default:
		return "unknown"
	}
}

// CoarseTag collapses a BSON type into the small JSON-like vocabulary used
// by collection listings. Arrays are "array", never their element type.
func CoarseTag(t bsontype.Type) string {
	switch t {
	case bsontype.String, bsontype.Symbol:
		return "string"
	case bsontype.Double, bsontype.Int32, bsontype.Int64, bsontype.Decimal128:
		return "number"
	case bsontype.Boolean:
		return "boolean"
	case bsontype.Array:
		return "array"
	case bsontype.Null:
		return "null"
	case bsontype.Undefined:
		return "undefined"
	default:
		return "object"
	}
}
