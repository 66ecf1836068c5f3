package invitecode

import (
	"strings"
	"testing"
)

func TestGenerate_LengthAndCharset(t *testing.T) {
	g := NewGenerator(8)

	for i := 0; i < 1000; i++ {
		code, err := g.Generate()
		if err != nil {
			t.Fatalf("Generate 失败: %v", err)
		}
		if len(code) != 8 {
			t.Fatalf("期望长度=8，实际=%d (%s)", len(code), code)
		}
		for _, ch := range code {
			if !strings.ContainsRune(Charset, ch) {
				t.Fatalf("字符 %q 不在字符集中 (%s)", ch, code)
			}
		}
	}
}

func TestGenerate_NoAmbiguousChars(t *testing.T) {
	for _, ch := range "0O1IL" {
		if strings.ContainsRune(Charset, ch) {
			t.Errorf("字符集不应包含易混淆字符 %q", ch)
		}
	}
}

func TestGenerate_DefaultLength(t *testing.T) {
	g := NewGenerator(0)

	code, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate 失败: %v", err)
	}
	if len(code) != DefaultLength {
		t.Errorf("期望默认长度=%d，实际=%d", DefaultLength, len(code))
	}
}

func TestGenerate_NotConstant(t *testing.T) {
	g := NewGenerator(8)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := g.Generate()
		if err != nil {
			t.Fatalf("Generate 失败: %v", err)
		}
		seen[code] = true
	}
	// 100 次抽取全部相同的概率可以忽略不计
	if len(seen) < 2 {
		t.Error("生成结果不应恒定")
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"abcd2345", "ABCD2345"},
		{"  XyZ789  ", "XYZ789"},
		{"ABCD2345", "ABCD2345"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) 期望=%q，实际=%q", tc.in, tc.want, got)
		}
	}
}
