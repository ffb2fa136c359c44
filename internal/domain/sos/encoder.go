// Package sos renders the current vitals into the compact emergency payload
// shown as a QR code and parses it back.
//
// Format, fields always in this order:
//
//	SOS-ALERT | HR:<hr> | BR:<br> | ANXIETY:<score>% | STATUS:<status>
//
// Before any scan HR and BR are rendered as "--".
package sos

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/silentsignal/vitals/internal/domain/model"
)

const (
	header      = "SOS-ALERT"
	separator   = " | "
	placeholder = "--"
)

// ErrMalformedPayload is returned by Decode for input not produced by Encode.
var ErrMalformedPayload = errors.New("malformed sos payload")

// Payload is the decoded form of an SOS string. HeartRate and BreathRate are
// nil when the payload was produced from pending vitals.
type Payload struct {
	HeartRate    *int
	BreathRate   *int
	AnxietyScore int
	Status       model.Status
}

// Encode renders r. It is deterministic: equal inputs give equal strings.
func Encode(r model.ScoredReading) string {
	hr, br := placeholder, placeholder
	status := r.Status
	if r.IsPending() {
		status = model.StatusPending
	} else {
		hr = strconv.Itoa(r.Sample.HeartRate)
		br = strconv.Itoa(r.Sample.BreathRate)
	}

	return strings.Join([]string{
		header,
		"HR:" + hr,
		"BR:" + br,
		"ANXIETY:" + strconv.Itoa(r.AnxietyScore) + "%",
		"STATUS:" + string(status),
	}, separator)
}

// Decode parses a payload produced by Encode.
func Decode(s string) (Payload, error) {
	parts := strings.Split(s, separator)
	if len(parts) != 5 || parts[0] != header {
		return Payload{}, fmt.Errorf("%w: expected 5 fields led by %s", ErrMalformedPayload, header)
	}

	var p Payload
	var err error
	if p.HeartRate, err = optionalInt(parts[1], "HR:"); err != nil {
		return Payload{}, err
	}
	if p.BreathRate, err = optionalInt(parts[2], "BR:"); err != nil {
		return Payload{}, err
	}

	anxiety, ok := strings.CutPrefix(parts[3], "ANXIETY:")
	if !ok || !strings.HasSuffix(anxiety, "%") {
		return Payload{}, fmt.Errorf("%w: bad anxiety field %q", ErrMalformedPayload, parts[3])
	}
	if p.AnxietyScore, err = strconv.Atoi(strings.TrimSuffix(anxiety, "%")); err != nil {
		return Payload{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	status, ok := strings.CutPrefix(parts[4], "STATUS:")
	if !ok || !model.Status(status).Valid() {
		return Payload{}, fmt.Errorf("%w: bad status field %q", ErrMalformedPayload, parts[4])
	}
	p.Status = model.Status(status)

	return p, nil
}

func optionalInt(field, prefix string) (*int, error) {
	v, ok := strings.CutPrefix(field, prefix)
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedPayload, prefix)
	}
	if v == placeholder {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	return &n, nil
}
