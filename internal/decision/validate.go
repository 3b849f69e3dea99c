package decision

import (
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"github.com/yildizm/go-promptfmt"
)

// Validate maps raw model text onto a Decision in domain d. It never panics
// and every input yields a well-formed Decision.
func Validate(raw string, d Domain) Decision {
	var fields map[string]any
	if err := promptfmt.NewResponse(raw).ParseJSON(&fields); err != nil || fields == nil {
		return failure(d, ReasonParseFailed, raw)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(d.schema),
		gojsonschema.NewGoLoader(fields),
	)
	if err != nil || !result.Valid() {
		return failure(d, ReasonParseFailed, raw)
	}

	dec := Decision{
		Domain:            d.Name,
		Reason:            stringField(fields, "reason"),
		RecommendedAction: stringField(fields, d.ActionField),
		Valid:             true,
	}

	if d.Boolean {
		if b, _ := fields[d.Field].(bool); b {
			dec.Tag = d.TrueTag
		} else {
			dec.Tag = d.FalseTag
		}
		return dec
	}

	value := strings.ToLower(strings.TrimSpace(decisionValue(fields, d.Field)))
	if d.Valid(value) {
		dec.Tag = value
		return dec
	}
	if d.repair != nil {
		if tag, ok := d.repair(fields); ok && d.Valid(tag) {
			dec.Tag = tag
			dec.Raw = raw
			dec.Repaired = true
			return dec
		}
	}
	return failure(d, "Invalid decision from "+value, raw)
}

// stringField returns fields[key] when it is a string and "" otherwise.
func stringField(fields map[string]any, key string) string {
	if key == "" {
		return ""
	}
	s, _ := fields[key].(string)
	return s
}

// decisionValue renders the decision field as text. Strings are returned as
// is, null or missing as "", and any other JSON value in compact form.
func decisionValue(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
