package gms

import (
	"encoding/json"
	"net/http"

	"github.com/mitchellh/mapstructure"

	"github.com/teranos/gmsctl/am"
	"github.com/teranos/gmsctl/errors"
	"github.com/teranos/gmsctl/session"
)

func shapeError(msg string) error {
	return errors.Mark(errors.New(msg), errors.ErrResponseShape)
}

// parseRunResponse unwraps the {"value": {...}} envelope of the delete,
// reference-deletion and rollback endpoints.
//
// A non-200 status becomes a *session.StatusError, which carries the server's
// "message" when the body has one. A body that is not an object or lacks an
// object "value" is marked errors.ErrResponseShape.
func parseRunResponse(resp *session.Response) (map[string]interface{}, error) {
	var body interface{}
	decodeErr := json.Unmarshal(resp.Body, &body)

	if resp.StatusCode != http.StatusOK {
		return nil, session.NewStatusError(resp)
	}
	if decodeErr != nil {
		return nil, envelopeError(errors.Wrap(decodeErr, "response is not JSON"))
	}

	obj, ok := body.(map[string]interface{})
	if !ok {
		return nil, envelopeError(errors.Newf("expected a JSON object, got %s", string(resp.Body)))
	}

	summary, ok := obj["value"].(map[string]interface{})
	if !ok {
		return nil, envelopeError(errors.Newf("response has no value object: %s", string(resp.Body)))
	}
	return summary, nil
}

func envelopeError(err error) error {
	err = errors.Mark(err, errors.ErrResponseShape)
	return errors.WithHintf(err, "received an unexpected response, please check your ~/%s", am.DefaultConfigFile)
}

// decodeSummary decodes an envelope summary into out, tolerating numbers sent
// as strings and missing fields.
func decodeSummary(summary map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create summary decoder")
	}
	if err := decoder.Decode(summary); err != nil {
		return errors.Mark(errors.Wrap(err, "failed to decode response summary"), errors.ErrResponseShape)
	}
	return nil
}
