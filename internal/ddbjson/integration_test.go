package ddbjson

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	jsoniter "github.com/json-iterator/go"

	"github.com/rjiter/streamjson/internal/testdata"
)

// TestDDBToNormalAgainstFixtureFile drives the full rjiter/u8pool/scanjson
// stack over a multi-record fixture and checks each output line decodes to
// the same value as hand-written expected JSON, using two independent
// reference decoders rather than this module's own tokenizer — per the
// teacher's own use of both jsoniter and sonic as comparison parsers in
// benchmarks_test.go.
func TestDDBToNormalAgainstFixtureFile(t *testing.T) {
	raw, err := testdata.Load("ddb_records.jsonl")
	if err != nil {
		t.Fatalf("testdata.Load: %v", err)
	}

	got := convertDDBToNormalString(t, string(raw), false)

	wantLines := []string{
		`{"id":"user-001","name":"Alice","age":30,"active":true,"tags":["admin","beta"]}`,
		`{"id":"user-002","name":"Bob","age":25,"active":false,"notes":null}`,
		`{"id":"user-003","scores":[1,2,3],"profile":{"city":"Seattle","zip":98101},"history":["login",5,true]}`,
	}

	gotLines := splitNonEmptyLines(got)
	if len(gotLines) != len(wantLines) {
		t.Fatalf("got %d output lines, want %d:\n%s", len(gotLines), len(wantLines), got)
	}

	for i, wantLine := range wantLines {
		var wantVal, gotVal map[string]interface{}
		if err := jsoniter.UnmarshalFromString(wantLine, &wantVal); err != nil {
			t.Fatalf("jsoniter decoding expected line %d: %v", i, err)
		}
		if err := jsoniter.UnmarshalFromString(gotLines[i], &gotVal); err != nil {
			t.Fatalf("jsoniter decoding converted line %d (%q): %v", i, gotLines[i], err)
		}
		if !jsoniterDeepEqual(wantVal, gotVal) {
			t.Errorf("line %d: got %v, want %v", i, gotVal, wantVal)
		}

		// Cross-check against a second decoder so the comparison isn't
		// resting on a single JSON library's quirks.
		var sonicVal map[string]interface{}
		if err := sonic.Unmarshal([]byte(gotLines[i]), &sonicVal); err != nil {
			t.Fatalf("sonic decoding converted line %d (%q): %v", i, gotLines[i], err)
		}
		if !jsoniterDeepEqual(wantVal, sonicVal) {
			t.Errorf("line %d: sonic got %v, want %v", i, sonicVal, wantVal)
		}
	}
}

func splitNonEmptyLines(s string) []string {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(s))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// jsoniterDeepEqual compares two decoded values via jsoniter's
// canonical-key-order marshaling, sidestepping Go map iteration order.
func jsoniterDeepEqual(a, b map[string]interface{}) bool {
	ab, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}
