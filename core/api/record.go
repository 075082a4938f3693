package api

import (
	"grocer/core/utils"

	"github.com/shopspring/decimal"
)

// Params are the query parameters of a single command.
type Params map[string]string

// With returns a copy of p with key set to value. p itself is not modified.
func (p Params) With(key, value string) Params {
	out := make(Params, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	out[key] = value
	return out
}

// Record is one decoded JSON object from the server.
// Field values keep their loose JSON types; the accessors convert on read.
type Record map[string]any

// Has reports whether key is present with a non-nil value.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// String returns the field as a string, empty when absent.
func (r Record) String(key string) string {
	return utils.ToString(r[key])
}

// Int returns the field as an int, zero when absent or unparseable.
func (r Record) Int(key string) int {
	return utils.ToInt(r[key])
}

// Decimal returns the field as a decimal amount, zero when absent or unparseable.
func (r Record) Decimal(key string) decimal.Decimal {
	s := r.String(key)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Records returns the field as a list of nested records.
// Elements that are not JSON objects are skipped.
func (r Record) Records(key string) []Record {
	switch v := r[key].(type) {
	case []Record:
		return v
	case []map[string]any:
		out := make([]Record, 0, len(v))
		for _, m := range v {
			out = append(out, Record(m))
		}
		return out
	case []any:
		out := make([]Record, 0, len(v))
		for _, item := range v {
			switch m := item.(type) {
			case map[string]any:
				out = append(out, Record(m))
			case Record:
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

// Response is a decoded server reply together with the command and
// parameters that produced it, so follow-up pages can repeat the request.
type Response struct {
	Record
	Command string
	Params  Params
}
