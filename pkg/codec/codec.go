// Package codec converts between tagged JSON envelopes and domain inputs.
//
// An envelope names the domain, the shape and the shape's fields:
//
//	{"domain": "network", "shape": "error", "input": {"message": "boom", "status_code": 503}}
//
// The shape may be omitted for single-shape domains (dbquery, orders).
// Decoding enforces the structural invariants the rule tables assume, so a
// decoded Input can always be evaluated.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"mercator-hq/guard/pkg/domains"
	"mercator-hq/guard/pkg/domains/access"
	"mercator-hq/guard/pkg/domains/dbquery"
	"mercator-hq/guard/pkg/domains/files"
	"mercator-hq/guard/pkg/domains/network"
	"mercator-hq/guard/pkg/domains/orders"
	"mercator-hq/guard/pkg/guard"
)

// Input is a decoded envelope: a domain name and a value of that domain's
// variant set.
type Input struct {
	Domain string
	Value  guard.Variant
}

// Envelope is the wire form of an Input.
type Envelope struct {
	Domain string          `json:"domain"`
	Shape  string          `json:"shape,omitempty"`
	Input  json.RawMessage `json:"input,omitempty"`
}

// Decode parses one envelope.
func Decode(data []byte) (Input, error) {
	var env Envelope
	if err := strictUnmarshal(data, &env); err != nil {
		return Input{}, &DecodeError{Cause: fmt.Errorf("%w: %v", ErrInvalidInput, err)}
	}
	return DecodeEnvelope(env)
}

// DecodeEnvelope converts an already parsed envelope into an Input.
func DecodeEnvelope(env Envelope) (Input, error) {
	v, err := decodeValue(env.Domain, guard.Shape(env.Shape), env.Input)
	if err != nil {
		return Input{}, &DecodeError{Domain: env.Domain, Shape: env.Shape, Cause: err}
	}
	return Input{Domain: env.Domain, Value: v}, nil
}

// Encode renders in as a single-line envelope.
func Encode(in Input) ([]byte, error) {
	if in.Value == nil {
		return nil, &DecodeError{Domain: in.Domain, Cause: invalid("input value is nil")}
	}
	payload, err := json.Marshal(in.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s input: %w", in.Domain, err)
	}
	env := Envelope{
		Domain: in.Domain,
		Shape:  string(in.Value.Shape()),
		Input:  payload,
	}
	return json.Marshal(env)
}

// Shapes returns the shapes accepted for domain.
func Shapes(domain string) ([]guard.Shape, bool) {
	switch domain {
	case domains.Network:
		return network.Shapes(), true
	case domains.Access:
		return access.Shapes(), true
	case domains.Files:
		return files.Shapes(), true
	case domains.DBQuery:
		return dbquery.Shapes(), true
	case domains.Orders:
		return orders.Shapes(), true
	default:
		return nil, false
	}
}

func decodeValue(domain string, shape guard.Shape, payload json.RawMessage) (guard.Variant, error) {
	switch domain {
	case domains.Network:
		return decodeNetwork(shape, payload)
	case domains.Access:
		return decodeAccess(shape, payload)
	case domains.Files:
		return decodeFiles(shape, payload)
	case domains.DBQuery:
		return decodeQuery(shape, payload)
	case domains.Orders:
		return decodeOrder(shape, payload)
	case "":
		return nil, fmt.Errorf("%w: domain is required", ErrUnknownDomain)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownDomain, domain)
	}
}

func decodeNetwork(shape guard.Shape, payload json.RawMessage) (network.Response, error) {
	switch shape {
	case network.ShapeSuccess:
		var raw struct {
			Data       string `json:"data"`
			StatusCode *int   `json:"status_code"`
		}
		if err := unmarshalPayload(payload, &raw); err != nil {
			return nil, err
		}
		s := network.NewSuccess(raw.Data)
		if raw.StatusCode != nil {
			s.StatusCode = *raw.StatusCode
		}
		if s.StatusCode < 1 {
			return nil, invalid("status_code must be positive")
		}
		return s, nil
	case network.ShapeError:
		var e network.Error
		if err := unmarshalPayload(payload, &e); err != nil {
			return nil, err
		}
		if e.StatusCode < 1 {
			return nil, invalid("status_code must be positive")
		}
		return e, nil
	case network.ShapeLoading, network.ShapeTimeout:
		if err := unmarshalPayload(payload, &struct{}{}); err != nil {
			return nil, err
		}
		if shape == network.ShapeLoading {
			return network.Loading{}, nil
		}
		return network.Timeout{}, nil
	default:
		return nil, unknownShape(shape)
	}
}

func decodeAccess(shape guard.Shape, payload json.RawMessage) (access.Request, error) {
	var (
		req access.Request
		err error
	)
	switch shape {
	case access.ShapeGetUser:
		req, err = decodeAs[access.GetUser](payload)
	case access.ShapeUpdateUser:
		req, err = decodeAs[access.UpdateUser](payload)
	case access.ShapeDeleteUser:
		req, err = decodeAs[access.DeleteUser](payload)
	case access.ShapeGetAllUsers:
		req, err = decodeAs[access.GetAllUsers](payload)
	default:
		return nil, unknownShape(shape)
	}
	if err != nil {
		return nil, err
	}
	if !req.Level().Valid() {
		return nil, invalid("auth_level %d is out of range", int(req.Level()))
	}
	return req, nil
}

func decodeFiles(shape guard.Shape, payload json.RawMessage) (files.Operation, error) {
	var (
		op   files.Operation
		size int64
		err  error
	)
	switch shape {
	case files.ShapeRead:
		var r files.Read
		r, err = decodeAs[files.Read](payload)
		op, size = r, r.Size
	case files.ShapeWrite:
		var w files.Write
		w, err = decodeAs[files.Write](payload)
		op, size = w, w.Size
	case files.ShapeDelete:
		var d files.Delete
		d, err = decodeAs[files.Delete](payload)
		op, size = d, d.Size
	default:
		return nil, unknownShape(shape)
	}
	if err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, invalid("size must not be negative")
	}
	return op, nil
}

func decodeQuery(shape guard.Shape, payload json.RawMessage) (dbquery.Query, error) {
	if shape != guard.AnyShape && shape != dbquery.ShapeQuery {
		return dbquery.Query{}, unknownShape(shape)
	}
	var raw struct {
		Table         string            `json:"table"`
		Operation     dbquery.Operation `json:"operation"`
		RecordCount   int               `json:"record_count"`
		IsTransaction bool              `json:"is_transaction"`
		Priority      *int              `json:"priority"`
	}
	if err := unmarshalPayload(payload, &raw); err != nil {
		return dbquery.Query{}, err
	}
	if raw.Operation == "" {
		return dbquery.Query{}, invalid("operation is required")
	}
	if raw.RecordCount < 0 {
		return dbquery.Query{}, invalid("record_count must not be negative")
	}

	q := dbquery.NewQuery(raw.Table, raw.Operation, raw.RecordCount)
	q.IsTransaction = raw.IsTransaction
	if raw.Priority != nil {
		if *raw.Priority < 1 {
			return dbquery.Query{}, invalid("priority must be at least 1")
		}
		q.Priority = *raw.Priority
	}
	return q, nil
}

func decodeOrder(shape guard.Shape, payload json.RawMessage) (orders.Request, error) {
	if shape != guard.AnyShape && shape != orders.ShapeOrder {
		return orders.Request{}, unknownShape(shape)
	}
	o, err := decodeAs[orders.Request](payload)
	if err != nil {
		return orders.Request{}, err
	}
	if o.Tier == "" {
		o.Tier = orders.Standard
	}
	return o, nil
}

func decodeAs[V any](payload json.RawMessage) (V, error) {
	var v V
	err := unmarshalPayload(payload, &v)
	return v, err
}

// unmarshalPayload decodes a shape's fields. A missing payload decodes as
// an empty object; unknown fields are rejected.
func unmarshalPayload(payload json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		trimmed = []byte("{}")
	}
	if err := strictUnmarshal(trimmed, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON value")
	}
	return nil
}

func unknownShape(shape guard.Shape) error {
	if shape == guard.AnyShape {
		return fmt.Errorf("%w: shape is required", ErrUnknownShape)
	}
	return fmt.Errorf("%w %q", ErrUnknownShape, shape)
}
