// Package tools contains the MCP query tools for MongoDB.
package tools

import (
	"bytes"
	"encoding/json"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.mongodb.org/mongo-driver/bson"
)

// MIME type constant.
const MimeJSON = "application/json"

// MakeTextToolResult wraps pretty JSON text in the uniform tool envelope.
// The tool name is carried in _meta.type.
func MakeTextToolResult(tool Name, text string) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Meta: sdkmcp.Meta{"type": tool.String()},
		Content: []sdkmcp.Content{
			&sdkmcp.TextContent{Text: text},
		},
	}
}

// RenderDocument serializes one document as indented relaxed Extended JSON.
// A nil document renders as null.
func RenderDocument(doc bson.Raw) (string, error) {
	if doc == nil {
		return "null", nil
	}
	b, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return "", fmt.Errorf("serializing document: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, b, "", "  "); err != nil {
		return "", fmt.Errorf("indenting document: %w", err)
	}
	return buf.String(), nil
}

// RenderDocuments serializes documents as an indented JSON array, keeping
// their order.
func RenderDocuments(docs []bson.Raw) (string, error) {
	items := make([]json.RawMessage, 0, len(docs))
	for _, doc := range docs {
		b, err := bson.MarshalExtJSON(doc, false, false)
		if err != nil {
			return "", fmt.Errorf("serializing document: %w", err)
		}
		items = append(items, b)
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serializing documents: %w", err)
	}
	return string(b), nil
}

// MarshalPretty renders any JSON-serializable value the way resources are
// rendered.
func MarshalPretty(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
