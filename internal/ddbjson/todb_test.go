package ddbjson

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func convertDDBToNormalString(t *testing.T, ddbJSON string, pretty bool) string {
	t.Helper()
	return convertDDBToNormalStringMode(t, ddbJSON, pretty, ItemWrapped)
}

func convertDDBToNormalStringMode(t *testing.T, ddbJSON string, pretty bool, mode ItemWrapperMode) string {
	t.Helper()
	var out bytes.Buffer
	err := ConvertDDBToNormal(
		strings.NewReader(ddbJSON),
		&out,
		make([]byte, 4096),
		make([]byte, 2048),
		64,
		pretty,
		mode,
	)
	if err != nil {
		t.Fatalf("ConvertDDBToNormal(%q): %v", ddbJSON, err)
	}
	return out.String()
}

func TestDDBToNormal(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		mode ItemWrapperMode
	}{
		{"string", `{"Item":{"name": {"S": "Alice"}}}`, "{\"name\":\"Alice\"}\n", ItemWrapped},
		{"number", `{"Item":{"age": {"N": "42"}}}`, "{\"age\":42}\n", ItemWrapped},
		{"number decimal", `{"Item":{"price": {"N": "3.14159"}}}`, "{\"price\":3.14159}\n", ItemWrapped},
		{"bool true", `{"Item":{"active": {"BOOL": true}}}`, "{\"active\":true}\n", ItemWrapped},
		{"bool false", `{"Item":{"inactive": {"BOOL": false}}}`, "{\"inactive\":false}\n", ItemWrapped},
		{"null", `{"Item":{"empty": {"NULL": true}}}`, "{\"empty\":null}\n", ItemWrapped},
		{"string set", `{"Item":{"tags": {"SS": ["apple", "banana", "cherry"]}}}`, "{\"tags\":[\"apple\",\"banana\",\"cherry\"]}\n", ItemWrapped},
		{"number set", `{"Item":{"scores": {"NS": ["1", "2", "3", "5", "8"]}}}`, "{\"scores\":[1,2,3,5,8]}\n", ItemWrapped},
		{"binary", `{"Item":{"data": {"B": "VGhpcyBpcyBiYXNlNjQ="}}}`, "{\"data\":\"VGhpcyBpcyBiYXNlNjQ=\"}\n", ItemWrapped},
		{"binary set", `{"Item":{"binaries": {"BS": ["Zmlyc3Q=", "c2Vjb25k", "dGhpcmQ="]}}}`, "{\"binaries\":[\"Zmlyc3Q=\",\"c2Vjb25k\",\"dGhpcmQ=\"]}\n", ItemWrapped},
		{"list", `{"Item":{"items": {"L": [{"S": "string"}, {"N": "123"}, {"BOOL": true}]}}}`, "{\"items\":[\"string\",123,true]}\n", ItemWrapped},
		{"list with maps", `{"Item":{"users": {"L": [{"M": {"name": {"S": "Alice"}, "age": {"N": "30"}}}, {"M": {"name": {"S": "Bob"}, "age": {"N": "25"}}}]}}}`, "{\"users\":[{\"name\":\"Alice\",\"age\":30},{\"name\":\"Bob\",\"age\":25}]}\n", ItemWrapped},
		{"nested lists", `{"Item":{"nested": {"L": [{"L": [{"S": "a"}, {"S": "b"}]}, {"L": [{"N": "1"}, {"N": "2"}]}]}}}`, "{\"nested\":[[\"a\",\"b\"],[1,2]]}\n", ItemWrapped},
		{"empty list", `{"Item":{"empty": {"L": []}}}`, "{\"empty\":[]}\n", ItemWrapped},
		{"map", `{"Item":{"metadata": {"M": {"key1": {"S": "value1"}, "key2": {"N": "999"}}}}}`, "{\"metadata\":{\"key1\":\"value1\",\"key2\":999}}\n", ItemWrapped},
		{"nested map", `{"Item":{"outer": {"M": {"inner": {"M": {"deep": {"S": "nested"}}}}}}}`, "{\"outer\":{\"inner\":{\"deep\":\"nested\"}}}\n", ItemWrapped},
		{"map mixed types", `{"Item":{"data": {"M": {"str": {"S": "hello"}, "num": {"N": "123"}, "bool": {"BOOL": true}, "null": {"NULL": true}}}}}`, "{\"data\":{\"str\":\"hello\",\"num\":123,\"bool\":true,\"null\":null}}\n", ItemWrapped},
		{"empty map", `{"Item":{"empty": {"M": {}}}}`, "{\"empty\":{}}\n", ItemWrapped},
		{"multiple fields", `{"Item":{"name": {"S": "Bob"}, "age": {"N": "30"}, "active": {"BOOL": true}}}`, "{\"name\":\"Bob\",\"age\":30,\"active\":true}\n", ItemWrapped},
		{"empty string set", `{"Item":{"tags": {"SS": []}}}`, "{\"tags\":[]}\n", ItemWrapped},
		{"empty number set", `{"Item":{"numbers": {"NS": []}}}`, "{\"numbers\":[]}\n", ItemWrapped},
		{"empty binary set", `{"Item":{"binaries": {"BS": []}}}`, "{\"binaries\":[]}\n", ItemWrapped},
		{"large number", `{"Item":{"bigNum": {"N": "123456789012345678901234567890"}}}`, "{\"bigNum\":123456789012345678901234567890}\n", ItemWrapped},
		{"negative number", `{"Item":{"temp": {"N": "-273.15"}}}`, "{\"temp\":-273.15}\n", ItemWrapped},
		{"special characters", `{"Item":{"message": {"S": "Hello \"World\"!\nNew line\tTab"}}}`, "{\"message\":\"Hello \\\"World\\\"!\\nNew line\\tTab\"}\n", ItemWrapped},
		{"empty string", `{"Item":{"empty": {"S": ""}}}`, "{\"empty\":\"\"}\n", ItemWrapped},
		{"zero number", `{"Item":{"zero": {"N": "0"}}}`, "{\"zero\":0}\n", ItemWrapped},
		{"field named M inside M", `{"Item":{"data": {"M": {"M": {"S": "value"}}}}}`, "{\"data\":{\"M\":\"value\"}}\n", ItemWrapped},
		{"field named L inside M", `{"Item":{"data": {"M": {"L": {"S": "value"}}}}}`, "{\"data\":{\"L\":\"value\"}}\n", ItemWrapped},
		{"field named Item inside M", `{"Item":{"data": {"M": {"Item": {"S": "value"}}}}}`, "{\"data\":{\"Item\":\"value\"}}\n", ItemWrapped},
		{"nested M fields", `{"Item":{"a": {"M": {"M": {"M": {"b": {"S": "c"}}}}}}}`, "{\"a\":{\"M\":{\"b\":\"c\"}}}\n", ItemWrapped},
		{"mixed confusing fields", `{"Item":{"test": {"M": {"M": {"S": "m"}, "L": {"L": [{"S": "l"}]}, "S": {"S": "s"}}}}}`, "{\"test\":{\"M\":\"m\",\"L\":[\"l\"],\"S\":\"s\"}}\n", ItemWrapped},
		{"no Item wrapper", `{"name":{"S": "Alice"}, "age": {"N": "30"}}`, "{\"name\":\"Alice\",\"age\":30}\n", ItemBare},
		{"with Item wrapper", `{"Item":{"name": {"S": "Alice"}, "age": {"N": "30"}}}`, "{\"name\":\"Alice\",\"age\":30}\n", ItemWrapped},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := convertDDBToNormalStringMode(t, c.in, false, c.mode)
			if got != c.want {
				t.Errorf("got %q, want %q", got, c.want)
			}
		})
	}
}

// TestDDBToNormalBareRecordWithItemNamedField guards against a regression
// of the old auto-detection: in ItemBare mode, a root-level field that
// happens to be literally named "Item" is still just a field, not mistaken
// for a wrapper key.
func TestDDBToNormalBareRecordWithItemNamedField(t *testing.T) {
	got := convertDDBToNormalStringMode(t, `{"Item":{"S":"somevalue"}}`, false, ItemBare)
	want := "{\"Item\":\"somevalue\"}\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDDBToNormalEmptyObjectNoItemKeyProducesNothing(t *testing.T) {
	got := convertDDBToNormalStringMode(t, `{}`, false, ItemBare)
	if got != "" {
		t.Errorf("got %q, want empty output (no fields, root object never opened)", got)
	}
}

func TestDDBToNormalPrettyNestedIndentation(t *testing.T) {
	in := `{"Item":{"name":{"S":"Test"},"settings":{"M":{"theme":{"S":"dark"},"notifications":{"M":{"email":{"BOOL":true},"push":{"BOOL":false}}}}}}}`
	want := "{\n" +
		"  \"name\":\"Test\",\n" +
		"  \"settings\":{\n" +
		"    \"theme\":\"dark\",\n" +
		"    \"notifications\":{\n" +
		"      \"email\":true,\n" +
		"      \"push\":false\n" +
		"    }\n" +
		"  }\n" +
		"}\n"
	got := convertDDBToNormalString(t, in, true)
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDDBToNormalMultiRecordStream(t *testing.T) {
	in := `{"Item":{"a":{"N":"1"}}}{"Item":{"a":{"N":"2"}}}`
	want := "{\"a\":1}\n{\"a\":2}\n"
	got := convertDDBToNormalString(t, in, false)
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDDBToNormalUnknownTypeDescriptorErrors(t *testing.T) {
	var out bytes.Buffer
	err := ConvertDDBToNormal(
		strings.NewReader(`{"Item":{"bad":{"X":"1"}}}`),
		&out,
		make([]byte, 4096),
		make([]byte, 2048),
		64,
		false,
		ItemWrapped,
	)
	if err == nil {
		t.Fatal("expected an error for an unknown type descriptor")
	}
	var de *Error
	if !errors.As(err, &de) {
		t.Fatalf("expected a *ddbjson.Error, got %T: %v", err, err)
	}
	if de.Kind != ErrParse {
		t.Errorf("got Kind %v, want ErrParse", de.Kind)
	}
}
