package symbolic_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/njchilds90/gocalc/symbolic"
)

// ============================================================
// JSON Round-trip
// ============================================================

func TestJSON_RoundTrip(t *testing.T) {
	x := symbolic.S("x")
	expr := symbolic.AddOf(
		symbolic.MulOf(symbolic.F(3, 2), symbolic.PowOf(x, symbolic.N(2))),
		symbolic.SinOf(x),
		symbolic.Pi,
	)
	s, err := symbolic.ToJSON(expr)
	if err != nil {
		t.Fatal(err)
	}
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(s), &data); err != nil {
		t.Fatal(err)
	}
	back, err := symbolic.FromJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(expr) {
		t.Errorf("round trip changed %s into %s", expr, back)
	}
}

func TestJSON_KeepsInexact(t *testing.T) {
	n, _ := symbolic.NDecimal("1.5")
	s, err := symbolic.ToJSON(n)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(s, `"inexact":true`) {
		t.Errorf("inexact flag missing from %s", s)
	}
	var data map[string]interface{}
	_ = json.Unmarshal([]byte(s), &data)
	back, err := symbolic.FromJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	if back.(*symbolic.Num).IsExact() {
		t.Error("inexact flag lost in round trip")
	}
}

func TestFromJSON_Rejects(t *testing.T) {
	cases := []map[string]interface{}{
		nil,
		{},
		{"type": "wat"},
		{"type": "num", "value": "abc"},
		{"type": "func", "name": "system", "arg": map[string]interface{}{"type": "sym", "name": "x"}},
		{"type": "const", "name": "tau"},
		{"type": "add", "terms": "x"},
	}
	for _, c := range cases {
		if _, err := symbolic.FromJSON(c); err == nil {
			t.Errorf("FromJSON(%v) should fail", c)
		}
	}
}
