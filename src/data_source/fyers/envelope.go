package fyers

import (
	"fmt"
	"net/http"
	"strings"

	"market-dashboard/src/network"

	"github.com/buger/jsonparser"
)

// Envelope is the common FYERS reply wrapper: {"s": "ok"|"error", "code", "message", "d"}.
type Envelope struct {
	HTTPStatus int
	Status     string
	Code       int64
	Message    string
	Raw        []byte
}

// -----------------------------------------------------------------------------

// ParseEnvelope reads the status fields. A non-JSON body is an error.
func ParseEnvelope(resp *network.Response) (*Envelope, error) {
	body := resp.Body
	_, dataType, _, err := jsonparser.Get(body)
	if err != nil || dataType != jsonparser.Object {
		return nil, fmt.Errorf("upstream responded %d %s with a non-JSON body",
			resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	env := &Envelope{HTTPStatus: resp.StatusCode, Raw: body}
	env.Status, _ = jsonparser.GetString(body, "s")
	env.Code, _ = jsonparser.GetInt(body, "code")
	for _, key := range []string{"message", "msg"} {
		if msg, err := jsonparser.GetString(body, key); err == nil && msg != "" {
			env.Message = msg
			break
		}
	}
	return env, nil
}

// -----------------------------------------------------------------------------

// OK reports an explicit "ok" status, or a 2xx reply with no status field.
func (e *Envelope) OK() bool {
	if e.Status != "" {
		return strings.EqualFold(e.Status, "ok")
	}
	return e.HTTPStatus >= 200 && e.HTTPStatus < 300
}

// NoData reports the "no_data" status used for an empty but valid range.
func (e *Envelope) NoData() bool {
	return strings.EqualFold(e.Status, "no_data")
}

// ErrorMessage returns the best available failure description.
func (e *Envelope) ErrorMessage() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.HTTPStatus >= 400:
		return fmt.Sprintf("upstream responded %d %s", e.HTTPStatus, http.StatusText(e.HTTPStatus))
	case e.Status != "":
		return e.Status
	default:
		return "Unknown error from FYERS"
	}
}

// -----------------------------------------------------------------------------

// Data returns the "d" payload (or "data"), nil when absent.
func (e *Envelope) Data() []byte {
	for _, key := range []string{"d", "data"} {
		v, t, _, err := jsonparser.Get(e.Raw, key)
		if err == nil && (t == jsonparser.Array || t == jsonparser.Object) {
			return v
		}
	}
	return nil
}

// Items lists the entries of the data payload. Objects yield their values.
func (e *Envelope) Items() [][]byte {
	data := e.Data()
	if data == nil {
		return nil
	}

	var items [][]byte
	_, t, _, _ := jsonparser.Get(data)
	switch t {
	case jsonparser.Array:
		jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
			if dataType == jsonparser.Object {
				items = append(items, value)
			}
		})
	case jsonparser.Object:
		jsonparser.ObjectEach(data, func(_ []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
			if dataType == jsonparser.Object {
				items = append(items, value)
			}
			return nil
		})
	}
	return items
}

// HasData reports whether at least one data item came back.
func (e *Envelope) HasData() bool {
	return len(e.Items()) > 0
}

// -----------------------------------------------------------------------------

// Failed mirrors the upstream convention: a call failed only if it is not ok
// and carries no data.
func (e *Envelope) Failed() bool {
	return !e.OK() && !e.HasData()
}
