// Package dealdata maps legacy "dealAnalyzerData" blobs into typed deals.
//
// Blobs were written by several generations of the analyzer UI and by hand.
// Version 1 is the loose camelCase shape with an "assumptions" object and
// numbers that may be strings or whole percentages. Version 2 is the
// snake_case encoding of models.Deal. A blob without a version is version 1.
package dealdata

import (
	"encoding/json"
	"errors"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"

	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/models"
)

const (
	VersionLoose = 1
	VersionTyped = 2
)

var (
	ErrMalformed          = errors.New("malformed deal data")
	ErrUnsupportedVersion = errors.New("unsupported deal data version")
)

// Normalize returns raw as strict JSON. Valid JSON passes through; Hjson
// (comments, unquoted keys, missing commas) is converted; anything else is
// handed to the JSON repairer.
func Normalize(raw []byte) ([]byte, error) {
	if json.Valid(raw) {
		return raw, nil
	}
	var v interface{}
	if err := hjson.Unmarshal(raw, &v); err == nil {
		if _, isObject := v.(map[string]interface{}); isObject {
			return json.Marshal(v)
		}
	}
	repaired, err := jsonrepair.RepairJSON(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !json.Valid([]byte(repaired)) {
		return nil, ErrMalformed
	}
	return []byte(repaired), nil
}

// Version reports the schema version of a normalized blob
func Version(data []byte) (int, error) {
	var head struct {
		SchemaVersion  *number `json:"schemaVersion"`
		SchemaVersion2 *number `json:"schema_version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch {
	case head.SchemaVersion != nil:
		return int(*head.SchemaVersion), nil
	case head.SchemaVersion2 != nil:
		return int(*head.SchemaVersion2), nil
	}
	return VersionLoose, nil
}

// Decode maps a legacy blob into a typed deal
func Decode(raw []byte) (*models.Deal, error) {
	data, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	version, err := Version(data)
	if err != nil {
		return nil, err
	}
	switch version {
	case VersionLoose:
		var v looseDeal
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return v.toDeal(), nil
	case VersionTyped:
		var d models.Deal
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return &d, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
}

// DecodeBasic reads only the flat top-level fields of a blob. It is the
// reduced-field path for blobs whose collections cannot be decoded.
func DecodeBasic(raw []byte) (*models.PropertyFinancials, error) {
	data, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	version, err := Version(data)
	if err != nil {
		return nil, err
	}
	if version != VersionLoose {
		return nil, fmt.Errorf("%w: basic fields exist only in version %d, got %d", ErrUnsupportedVersion, VersionLoose, version)
	}
	var v basicProperty
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return v.toFinancials(), nil
}
