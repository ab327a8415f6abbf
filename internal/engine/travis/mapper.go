package travis

import (
	"bytes"
	"encoding/json"
	"fmt"

	"travisconnect/internal/engine"
)

// Raw build states and their canonical status. Unlisted states are red.
const (
	statePassed  = "passed"
	stateStarted = "started"
	stateDefault = "red"
)

var codeToStatus = map[string]string{
	statePassed:  engine.StatusBlue,
	stateStarted: engine.StatusYellow,
}

// toStatus returns the canonical status for a raw Travis build state
func toStatus(state string) string {
	if status, ok := codeToStatus[state]; ok {
		return status
	}
	return engine.StatusRed
}

// toJob converts a Travis repository record into a Job
func toJob(raw json.RawMessage) (engine.Job, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return engine.Job{}, &engine.ParseError{Err: err}
	}
	if fields == nil {
		return engine.Job{}, &engine.ParseError{Field: "repository"}
	}

	slug, err := requiredString(fields, "slug")
	if err != nil {
		return engine.Job{}, err
	}
	if slug == "" {
		return engine.Job{}, &engine.ParseError{Field: "slug", Err: fmt.Errorf("empty value")}
	}
	description, err := requiredString(fields, "description")
	if err != nil {
		return engine.Job{}, err
	}

	state, err := optionalString(fields, "last_build_state")
	if err != nil {
		return engine.Job{}, err
	}
	if state == nil {
		s := stateDefault
		state = &s
	}

	lastBuildID, err := optionalID(fields, "last_build_id")
	if err != nil {
		return engine.Job{}, err
	}

	return engine.Job{
		ID:          slug,
		Name:        slug,
		Description: description,
		Status:      toStatus(*state),
		Building:    *state == stateStarted,
		LastBuildID: lastBuildID,
	}, nil
}

// requiredString reads a string field that must be present; null reads as empty
func requiredString(fields map[string]json.RawMessage, name string) (string, error) {
	raw, ok := fields[name]
	if !ok {
		return "", &engine.ParseError{Field: name}
	}
	var v *string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", &engine.ParseError{Field: name, Err: err}
	}
	if v == nil {
		return "", nil
	}
	return *v, nil
}

// optionalString reads a string field, nil when missing or null
func optionalString(fields map[string]json.RawMessage, name string) (*string, error) {
	raw, ok := fields[name]
	if !ok {
		return nil, nil
	}
	var v *string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, &engine.ParseError{Field: name, Err: err}
	}
	return v, nil
}

// optionalID reads an identifier given either as a string or a number
func optionalID(fields map[string]json.RawMessage, name string) (*string, error) {
	raw, ok := fields[name]
	if !ok {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &engine.ParseError{Field: name, Err: err}
	}

	var id string
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		id = t
	case json.Number:
		id = t.String()
	default:
		return nil, &engine.ParseError{Field: name, Err: fmt.Errorf("unexpected type %T", v)}
	}
	if id == "" {
		return nil, nil
	}
	return &id, nil
}
