package kernelabi

import "testing"

func TestParseParamsBasic(t *testing.T) {
	p := ParseParams([]byte("alpha=0.5,mode='band,pass',beta=2"))
	if v, ok := p.Get("alpha"); !ok || v != "0.5" {
		t.Fatalf("alpha = %q, %v", v, ok)
	}
	if v, ok := p.Get("mode"); !ok || v != "band,pass" {
		t.Fatalf("mode = %q, %v", v, ok)
	}
	if v, ok := p.Get("beta"); !ok || v != "2" {
		t.Fatalf("beta = %q, %v", v, ok)
	}
}

func TestParseParamsEmpty(t *testing.T) {
	p := ParseParams(nil)
	if _, ok := p.Get("anything"); ok {
		t.Fatal("expected no values in empty params")
	}
	if v := p.GetDefault("anything", "fallback"); v != "fallback" {
		t.Fatalf("got %q, want fallback", v)
	}
}

func TestParseParamsMalformedEntrySkipsOnlyThatKey(t *testing.T) {
	p := ParseParams([]byte("good=1,badentry,also=2"))
	if v, ok := p.Get("good"); !ok || v != "1" {
		t.Fatalf("good = %q, %v", v, ok)
	}
	if _, ok := p.Get("badentry"); ok {
		t.Fatal("badentry should not have been parsed as a key")
	}
	if v, ok := p.Get("also"); !ok || v != "2" {
		t.Fatalf("also = %q, %v; a malformed entry should not block later entries from parsing", v, ok)
	}
}

func TestParseParamsUnterminatedQuoteSkipsOnlyThatKey(t *testing.T) {
	p := ParseParams([]byte("good=1,mode='unterminated"))
	if v, ok := p.Get("good"); !ok || v != "1" {
		t.Fatalf("good = %q, %v", v, ok)
	}
	if _, ok := p.Get("mode"); ok {
		t.Fatal("mode should not have been parsed with an unterminated quote")
	}
}

func TestParseParamsAllSeparators(t *testing.T) {
	p := ParseParams([]byte("a=1,b=2&c=3\nd=4"))
	for k, want := range map[string]string{"a": "1", "b": "2", "c": "3", "d": "4"} {
		if v, ok := p.Get(k); !ok || v != want {
			t.Fatalf("%s = %q, %v; want %q", k, v, ok, want)
		}
	}
}

func TestParamsTypedAccessors(t *testing.T) {
	p := ParseParams([]byte("f=1.5e2,n=-7,b=true,bad_f=nope,bad_n=nope,bad_b=nope"))
	if v := p.GetFloat("f", 0); v != 150 {
		t.Fatalf("GetFloat(f) = %v, want 150", v)
	}
	if v := p.GetInt("n", 0); v != -7 {
		t.Fatalf("GetInt(n) = %v, want -7", v)
	}
	if v := p.GetBool("b", false); !v {
		t.Fatal("GetBool(b) = false, want true")
	}
	if v := p.GetFloat("bad_f", 9.5); v != 9.5 {
		t.Fatalf("GetFloat(bad_f) = %v, want default 9.5", v)
	}
	if v := p.GetInt("bad_n", 42); v != 42 {
		t.Fatalf("GetInt(bad_n) = %v, want default 42", v)
	}
	if v := p.GetBool("bad_b", true); !v {
		t.Fatal("GetBool(bad_b) = false, want default true")
	}
	if v := p.GetFloat("missing", 3.25); v != 3.25 {
		t.Fatalf("GetFloat(missing) = %v, want default 3.25", v)
	}
	if v := p.GetInt("missing", 9); v != 9 {
		t.Fatalf("GetInt(missing) = %v, want default 9", v)
	}
	if v := p.GetBool("missing", true); !v {
		t.Fatal("GetBool(missing) = false, want default true")
	}
}

func TestParamsGetOnNil(t *testing.T) {
	var p *Params
	if v, ok := p.Get("x"); ok || v != "" {
		t.Fatalf("nil Params.Get should be zero value, got %q, %v", v, ok)
	}
}
