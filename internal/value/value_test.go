package value

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	var _ Value = Null{}
	var _ Value = Bool(true)
	var _ Value = Int(42)
	var _ Value = Float(1.5)
	var _ Value = String("test")
	var _ Value = Array{String("a"), Int(1)}
	var _ Value = Object{"key": String("value")}
}

func TestTag(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want TypeTag
	}{
		{"nil", nil, TagNull},
		{"null", Null{}, TagNull},
		{"bool", Bool(false), TagBoolean},
		{"int", Int(0), TagInteger},
		{"float", Float(0), TagFloat},
		{"string", String(""), TagString},
		{"array", Array{}, TagArray},
		{"object", Object{}, TagObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tag(tt.in))
		})
	}
}

func TestDecodeDistinguishesNumbersAndBooleans(t *testing.T) {
	rec, err := DecodeRecord([]byte(`{"a": 1, "b": 1.0, "c": true, "d": 2e3, "e": "1", "f": null}`))
	require.NoError(t, err)

	assert.Equal(t, Int(1), rec["a"])
	assert.Equal(t, Float(1.0), rec["b"])
	assert.Equal(t, Bool(true), rec["c"])
	assert.Equal(t, Float(2000), rec["d"])
	assert.Equal(t, String("1"), rec["e"])
	assert.Equal(t, Null{}, rec["f"])
}

func TestDecodeLargeIntegerKeepsPrecision(t *testing.T) {
	rec, err := DecodeRecord([]byte(`{"id": 9007199254740993}`))
	require.NoError(t, err)
	assert.Equal(t, Int(9007199254740993), rec["id"])
}

func TestDecodeIntegerOverflowBecomesFloat(t *testing.T) {
	rec, err := DecodeRecord([]byte(`{"big": 99999999999999999999}`))
	require.NoError(t, err)
	assert.Equal(t, TagFloat, Tag(rec["big"]))
}

func TestDecodeNested(t *testing.T) {
	rec, err := DecodeRecord([]byte(`{"meta": {"device": {"type": "mobile"}}, "tags": ["a", 2]}`))
	require.NoError(t, err)

	meta, ok := rec["meta"].(Object)
	require.True(t, ok)
	device, ok := meta["device"].(Object)
	require.True(t, ok)
	assert.Equal(t, String("mobile"), device["type"])

	assert.Equal(t, Array{String("a"), Int(2)}, rec["tags"])
}

func TestDecodeRecordRejectsNonObjects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		got   string
	}{
		{"array", `[1, 2]`, "array"},
		{"string", `"hello"`, "string"},
		{"number", `42`, "integer"},
		{"null", `null`, "null"},
		{"bool", `true`, "boolean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRecord([]byte(tt.input))
			require.Error(t, err)
			assert.True(t, IsInputShapeError(err))
			assert.Contains(t, err.Error(), tt.got)
		})
	}
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	_, err := DecodeRecord([]byte(`{"a": `))
	require.Error(t, err)
	assert.False(t, IsInputShapeError(err))
}

func TestDecodeRejectsTrailingData(t *testing.T) {
	_, err := Decode([]byte(`{"a": 1} {"b": 2}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trailing")
}

func TestRecordFromAny(t *testing.T) {
	rec, err := RecordFromAny(map[string]any{
		"name":  "x",
		"count": 3,
		"ratio": 0.5,
		"ok":    true,
		"none":  nil,
		"list":  []any{1, "two"},
		"obj":   map[string]any{"inner": int64(7)},
	})
	require.NoError(t, err)

	assert.Equal(t, String("x"), rec["name"])
	assert.Equal(t, Int(3), rec["count"])
	assert.Equal(t, Float(0.5), rec["ratio"])
	assert.Equal(t, Bool(true), rec["ok"])
	assert.Equal(t, Null{}, rec["none"])
	assert.Equal(t, Array{Int(1), String("two")}, rec["list"])
	assert.Equal(t, Object{"inner": Int(7)}, rec["obj"])
}

func TestRecordFromAnyRejectsNonMapping(t *testing.T) {
	for _, in := range []any{[]any{1}, "str", 12, nil} {
		_, err := RecordFromAny(in)
		require.Error(t, err)
		assert.True(t, IsInputShapeError(err), "input %v", in)
	}
}

func TestRecordFromAnyRejectsUnsupportedNestedType(t *testing.T) {
	_, err := RecordFromAny(map[string]any{"ch": make(chan int)})
	require.Error(t, err)

	var se *InputShapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "ch", se.Path)
}

func TestStringify(t *testing.T) {
	tests := []struct {
		in   Value
		want string
	}{
		{Null{}, "null"},
		{Bool(true), "true"},
		{Bool(false), "false"},
		{Int(25), "25"},
		{Int(-3), "-3"},
		{Float(1), "1.0"},
		{Float(2.5), "2.5"},
		{Float(1e21), "1e+21"},
		{String("25"), "25"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Stringify(tt.in))
		})
	}

	assert.NotEqual(t, Stringify(Int(1)), Stringify(Float(1)))
}

func TestObjectSortedKeys(t *testing.T) {
	obj := Object{"zebra": Int(1), "apple": Int(2), "Banana": Int(3)}
	assert.Equal(t, []string{"Banana", "apple", "zebra"}, obj.SortedKeys())
}

func TestMarshalRoundTrip(t *testing.T) {
	in := []byte(`{"a":[1,2.5,"x",null,true],"b":{"c":false}}`)
	rec, err := DecodeRecord(in)
	require.NoError(t, err)

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, string(in), string(out))
}

func TestIsScalar(t *testing.T) {
	assert.True(t, IsScalar(Null{}))
	assert.True(t, IsScalar(String("x")))
	assert.False(t, IsScalar(Array{}))
	assert.False(t, IsScalar(Object{}))
}
