package parser

// specSchema rejects unknown keys so a typo in a spec file is a load-time
// error rather than a silently ignored option.
const specSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["pages"],
  "properties": {
    "pages": {
      "type": "array",
      "minItems": 1,
      "items": {"$ref": "#/definitions/page"}
    }
  },
  "definitions": {
    "page": {
      "type": "object",
      "additionalProperties": false,
      "required": ["name", "checks"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "url": {"type": "string"},
        "file": {"type": "string"},
        "checks": {
          "type": "array",
          "minItems": 1,
          "items": {"$ref": "#/definitions/check"}
        }
      }
    },
    "check": {
      "type": "object",
      "additionalProperties": false,
      "required": ["kind", "locator"],
      "properties": {
        "kind": {"enum": ["css", "link", "field", "button", "text", "pattern"]},
        "locator": {"type": "string", "minLength": 1},
        "count": {"type": "integer", "minimum": 0},
        "minimum": {"type": "integer", "minimum": 0},
        "maximum": {"type": "integer", "minimum": 0},
        "between": {
          "type": "array",
          "items": {"type": "integer", "minimum": 0},
          "minItems": 2,
          "maxItems": 2
        },
        "wait": {"type": "integer", "minimum": 0},
        "negated": {"type": "boolean"},
        "text": {"type": "string"},
        "checked": {"type": "boolean"},
        "attrs": {
          "type": "object",
          "additionalProperties": {"type": "string"}
        }
      }
    }
  }
}`
