package symbol

import (
	"errors"
	"testing"
)

func TestConvert_Yahoo(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"600519", "600519.SS"},
		{"601318", "601318.SS"},
		{"688111", "688111.SS"},
		{"600519.SH", "600519.SS"},
		{"000001", "000001.SZ"},
		{"002594", "002594.SZ"},
		{"300750", "300750.SZ"},
		{"hk00700", "0700.HK"},
		{"hk9988", "9988.HK"},
		{"usAAPL", "AAPL"},
		{"AAPL", "AAPL"},
		{"msft", "MSFT"},
		{"BTC-USD", "BTC-USD"},
		{"600519.SS", "600519.SS"},
		{"0700.HK", "0700.HK"},
		// Unclassified numeric codes (funds, ETFs) fall through untouched.
		{"510300", "510300"},
	}
	for _, c := range cases {
		got, err := Convert(StyleYahoo, c.in)
		if err != nil {
			t.Fatalf("Convert(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("Convert(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestConvert_Yahoo_Idempotent(t *testing.T) {
	for _, in := range []string{"600519", "000001", "hk00700", "600519.SH"} {
		once, err := Convert(StyleYahoo, in)
		if err != nil {
			t.Fatalf("Convert(%q): %v", in, err)
		}
		twice, err := Convert(StyleYahoo, once)
		if err != nil {
			t.Fatalf("Convert(%q): %v", once, err)
		}
		if once != twice {
			t.Fatalf("not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}

func TestConvert_Yahoo_BadHongKongCode(t *testing.T) {
	_, err := Convert(StyleYahoo, "hkXYZ")
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("want ErrFormat, got %v", err)
	}
}

func TestConvert_Tencent(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"600519", "sh600519"},
		{"600519.SH", "sh600519"},
		{"000001", "sz000001"},
		{"300750", "sz300750"},
		{"sh600519", "sh600519"},
		{"hk00700", "hk00700"},
		// Unsupported instruments pass through; the fetch fails downstream.
		{"BTC-USD", "BTC-USD"},
	}
	for _, c := range cases {
		got, err := Convert(StyleTencent, c.in)
		if err != nil {
			t.Fatalf("Convert(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("Convert(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestConvert_SecID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"600519", "1.600519"},
		{"600519.SS", "1.600519"},
		{"688111", "1.688111"},
		{"000001", "0.000001"},
		{"002594", "0.002594"},
	}
	for _, c := range cases {
		got, err := Convert(StyleSecID, c.in)
		if err != nil {
			t.Fatalf("Convert(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("Convert(%q) = %q, want %q", c.in, got, c.want)
		}
	}

	if _, err := Convert(StyleSecID, "BTC-USD"); !errors.Is(err, ErrFormat) {
		t.Fatalf("want ErrFormat for crypto pair, got %v", err)
	}
}
