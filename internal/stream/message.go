package stream

import (
	"encoding/json"
	"math"
	"strconv"
)

// parseServerError inspects one inbound frame. ok is false for malformed
// frames and frames without a truthy "err" field.
func parseServerError(data []byte) (se ServerError, ok bool) {
	var msg map[string]interface{}
	if err := json.Unmarshal(data, &msg); err != nil {
		return ServerError{}, false
	}
	errVal, present := msg["err"]
	if !present || !truthy(errVal) {
		return ServerError{}, false
	}
	return ServerError{Err: display(errVal), StatusCode: display(msg["status_code"])}, true
}

// truthy follows JSON truthiness: false, 0, "" and null are falsy.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case string:
		return t != ""
	default:
		return true
	}
}

func display(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
