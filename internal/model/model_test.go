package model

import (
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
)

func TestTableName(t *testing.T) {
	for _, tc := range []struct {
		org  string
		want string
	}{
		{"42", "RxEvents42"},
		{"acme", "RxEventsacme"},
		{"", "RxEvents"},
	} {
		if got := TableName(tc.org); got != tc.want {
			t.Errorf("TableName(%q) = %q, want %q", tc.org, got, tc.want)
		}
	}
}

func TestEventJSON(t *testing.T) {
	ev := Event{EventID: 7, EventData: json.RawMessage(`{"a":1}`)}
	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"eventId":7,"eventData":{"a":1}}` {
		t.Fatalf("got %s", data)
	}
}

func TestErrorKinds(t *testing.T) {
	cause := sql.ErrConnDone
	for _, tc := range []struct {
		name string
		err  error
		kind error
	}{
		{"Validation", Validation("parse firstEvent", errors.New("bad")), ErrValidation},
		{"Database", Database("insert", cause), ErrDatabase},
		{"Queue", Queue("receive", cause), ErrQueue},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if !errors.Is(tc.err, tc.kind) {
				t.Errorf("errors.Is(%v, %v) = false", tc.err, tc.kind)
			}
			for _, other := range []error{ErrValidation, ErrDatabase, ErrQueue} {
				if other != tc.kind && errors.Is(tc.err, other) {
					t.Errorf("%v unexpectedly matches %v", tc.err, other)
				}
			}
		})
	}

	wrapped := Database("insert", cause)
	if !errors.Is(wrapped, sql.ErrConnDone) {
		t.Error("Database error should unwrap to its cause")
	}
	var me *Error
	if !errors.As(wrapped, &me) || me.Op != "insert" {
		t.Errorf("errors.As = %+v", me)
	}
	if got := wrapped.Error(); got != "database error: insert: sql: connection is already closed" {
		t.Errorf("Error() = %q", got)
	}
}

func TestErrorWithoutCause(t *testing.T) {
	err := &Error{Kind: ErrValidation, Op: "orgId is required"}
	if err.Error() != "validation error: orgId is required" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrValidation) {
		t.Error("expected ErrValidation")
	}
}
