package export

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/16mlwood-afk/invoice-parser-sub002/internal/entity"
)

// invoiceSchemaJSON is the wire contract for JSON exports. Money
// amounts are decimal strings, never floats.
const invoiceSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["vendor", "items"],
    "properties": {
      "order_number": {"type": "string", "pattern": "^\\d{3}-\\d{7}-\\d{7}$"},
      "order_date": {"type": "string"},
      "vendor": {"const": "Amazon"},
      "currency": {"type": "string"},
      "format": {"type": "string"},
      "language": {"type": "string"},
      "subtotal": {"$ref": "#/definitions/money"},
      "shipping": {"$ref": "#/definitions/money"},
      "tax": {"$ref": "#/definitions/money"},
      "total": {"$ref": "#/definitions/money"},
      "items": {
        "type": ["array", "null"],
        "items": {
          "type": "object",
          "required": ["description", "quantity", "unit_price", "total_price"],
          "properties": {
            "asin": {"type": "string", "pattern": "^[A-Z0-9]{10}$"},
            "description": {"type": "string"},
            "quantity": {"type": "integer", "minimum": 1},
            "unit_price": {"$ref": "#/definitions/money"},
            "total_price": {"$ref": "#/definitions/money"},
            "currency": {"type": "string"},
            "confidence": {"type": "number", "minimum": 0, "maximum": 1}
          }
        }
      },
      "validation": {
        "type": "object",
        "required": ["score", "is_valid"],
        "properties": {
          "score": {"type": "integer", "minimum": 0, "maximum": 100},
          "is_valid": {"type": "boolean"}
        }
      },
      "extraction_metadata": {
        "type": "object",
        "required": ["mode", "usable"],
        "properties": {
          "mode": {"const": "partial_recovery"},
          "usable": {"type": "boolean"}
        }
      }
    }
  },
  "definitions": {
    "money": {"type": "string", "pattern": "^-?\\d+(\\.\\d+)?$"}
  }
}`

var invoiceSchema = jsonschema.MustCompileString("invoices.json", invoiceSchemaJSON)

// WriteJSON marshals records and validates the payload against the
// embedded schema. A violation is a programmer error in the record
// shape, surfaced as a wrapped error rather than silently exported.
func (s *Service) WriteJSON(records []*entity.InvoiceRecord) ([]byte, error) {
	if records == nil {
		records = []*entity.InvoiceRecord{}
	}
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal invoices: %w", err)
	}

	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("reparse export: %w", err)
	}
	if err := invoiceSchema.Validate(v); err != nil {
		return nil, fmt.Errorf("export does not match invoice schema: %w", err)
	}

	s.logger.Info("export.json.ok", "invoices", len(records))
	return b, nil
}
