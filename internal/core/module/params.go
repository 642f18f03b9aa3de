package module

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"sigs.k8s.io/yaml"

	"github.com/artpar/dockstate/internal/core/reconcile"
)

// ansibleArgsKey wraps params when the caller uses the new-style module protocol.
const ansibleArgsKey = "ANSIBLE_MODULE_ARGS"

// internalParamPrefix marks caller bookkeeping params such as _ansible_check_mode.
const internalParamPrefix = "_ansible_"

var (
	ErrEmptyParams   = errors.New("params are empty")
	ErrInvalidParams = errors.New("invalid params")
)

//go:embed schema/*.json
var schemaFiles embed.FS

var (
	checkRunningSchema = mustCompileSchema("schema/check_running.json")
	imagePlanSchema    = mustCompileSchema("schema/image_plan.json")
)

func mustCompileSchema(name string) *jsonschema.Schema {
	data, err := schemaFiles.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return jsonschema.MustCompileString(name, string(data))
}

// =============================================================================
// Decoding
// =============================================================================

// DecodeCheckRunningParams decodes and validates "check-running" params.
func DecodeCheckRunningParams(raw []byte) (*CheckRunningParams, error) {
	var params CheckRunningParams
	if err := decodeParams(raw, checkRunningSchema, &params); err != nil {
		return nil, err
	}
	return &params, nil
}

// DecodeImagePlanParams decodes and validates "image-plan" params.
func DecodeImagePlanParams(raw []byte) (*ImagePlanParams, error) {
	var params ImagePlanParams
	if err := decodeParams(raw, imagePlanSchema, &params); err != nil {
		return nil, err
	}
	return &params, nil
}

func decodeParams(raw []byte, schema *jsonschema.Schema, target interface{}) error {
	doc, err := normalizeParams(raw)
	if err != nil {
		return err
	}

	if err := schema.Validate(doc); err != nil {
		return invalidParams(err.Error())
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return invalidParams("encode params: " + err.Error())
	}
	if err := json.Unmarshal(data, target); err != nil {
		return invalidParams("decode params: " + err.Error())
	}
	return nil
}

// normalizeParams turns a JSON or YAML params document into a plain object,
// unwrapping ANSIBLE_MODULE_ARGS and dropping _ansible_* bookkeeping keys.
func normalizeParams(raw []byte) (map[string]interface{}, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, reconcile.NewError(reconcile.KindInvalidInput, "params", "no params were supplied", ErrEmptyParams)
	}

	jsonData, err := yaml.YAMLToJSON(raw)
	if err != nil {
		return nil, invalidParams("params are neither JSON nor YAML: " + err.Error())
	}

	dec := json.NewDecoder(bytes.NewReader(jsonData))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, invalidParams("decode params: " + err.Error())
	}

	params, ok := doc.(map[string]interface{})
	if !ok {
		return nil, invalidParams("params must be an object")
	}
	if wrapped, found := params[ansibleArgsKey]; found {
		inner, ok := wrapped.(map[string]interface{})
		if !ok {
			return nil, invalidParams(ansibleArgsKey + " must be an object")
		}
		params = inner
	}

	for key := range params {
		if strings.HasPrefix(key, internalParamPrefix) {
			delete(params, key)
		}
	}
	return params, nil
}

func invalidParams(message string) error {
	return reconcile.NewError(reconcile.KindInvalidInput, "params", message, ErrInvalidParams)
}

// =============================================================================
// flexString
// =============================================================================

// flexString accepts a JSON string, number or null. Callers often write
// numeric tags unquoted (tag: 15), which must still mean "15".
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*s = ""
	case len(trimmed) > 0 && trimmed[0] == '"':
		var str string
		if err := json.Unmarshal(trimmed, &str); err != nil {
			return err
		}
		*s = flexString(str)
	default:
		var num json.Number
		if err := json.Unmarshal(trimmed, &num); err != nil {
			return err
		}
		*s = flexString(num.String())
	}
	return nil
}
