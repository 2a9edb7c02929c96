package index

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	original := mustBuild(t, testRecords())

	payload, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	restored, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if !reflect.DeepEqual(restored.Name, original.Name) {
		t.Error("restored name index differs from original")
	}
	if !reflect.DeepEqual(restored.Professor, original.Professor) {
		t.Error("restored professor index differs from original")
	}
	if !reflect.DeepEqual(restored.Type, original.Type) {
		t.Error("restored type index differs from original")
	}
	if !reflect.DeepEqual(restored.Day, original.Day) {
		t.Error("restored day index differs from original")
	}
	if !reflect.DeepEqual(restored.Code, original.Code) {
		t.Error("restored code index differs from original")
	}
}

func TestEncodeDeterministic(t *testing.T) {
	ix := mustBuild(t, testRecords())

	first, err := Encode(ix)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	second, err := Encode(ix)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("Encode() produced different payloads for the same index")
	}
}

func TestEncodeEmbedsVersion(t *testing.T) {
	payload, err := Encode(mustBuild(t, nil))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	var head struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(payload, &head); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if head.Version != Version {
		t.Errorf("payload version = %d, want %d", head.Version, Version)
	}
}

func TestDecodeStaleVersion(t *testing.T) {
	payload := fmt.Appendf(nil, `{"version":%d,"name":[],"professor":[],"type":[],"day":[],"code":[]}`, Version+1)

	_, err := Decode(payload)
	if !errors.Is(err, ErrSnapshotStale) {
		t.Errorf("Decode() error = %v, want ErrSnapshotStale", err)
	}
}

func TestDecodeCorruptPayload(t *testing.T) {
	for _, payload := range []string{
		"",
		"not json",
		`{"version":1,"name":"wrong shape"}`,
		`{"version":1,"name":[["key"]]}`,
	} {
		if _, err := Decode([]byte(payload)); !errors.Is(err, ErrSnapshotCorrupt) {
			t.Errorf("Decode(%q) error = %v, want ErrSnapshotCorrupt", payload, err)
		}
	}
}

func TestDecodePreservesRecords(t *testing.T) {
	ix := mustBuild(t, testRecords())

	payload, err := Encode(ix)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	restored, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	got := restored.LookupName("자료구조")
	if len(got) != 1 {
		t.Fatalf("LookupName(자료구조) returned %d records, want 1", len(got))
	}
	if got[0].ProfessorName != "김도년" || got[0].Schedule != "월수13:00-14:30" {
		t.Errorf("restored record lost fields: %+v", got[0])
	}
}
