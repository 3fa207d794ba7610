package security

import "testing"

func TestGenerateNumericCode(t *testing.T) {
	code, err := GenerateNumericCode(6)
	if err != nil {
		t.Fatalf("GenerateNumericCode returned error: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6 digits, got %q", code)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Fatalf("expected digits only, got %q", code)
		}
	}

	if _, err := GenerateNumericCode(0); err == nil {
		t.Fatal("expected error for non-positive length")
	}
}

func TestGenerateNumericCodeCoversAllDigits(t *testing.T) {
	counts := make(map[rune]int)
	for i := 0; i < 200; i++ {
		code, err := GenerateNumericCode(8)
		if err != nil {
			t.Fatalf("GenerateNumericCode returned error: %v", err)
		}
		if len(code) != 8 {
			t.Fatalf("expected 8 digits, got %q", code)
		}
		for _, r := range code {
			counts[r]++
		}
	}

	// 1600 uniform draws make an absent digit effectively impossible.
	for d := '0'; d <= '9'; d++ {
		if counts[d] == 0 {
			t.Fatalf("digit %q never generated", d)
		}
	}
}

func TestHashTokenIsStable(t *testing.T) {
	first := HashToken("123456")
	second := HashToken("123456")
	if first != second {
		t.Fatal("hashing must be deterministic")
	}
	if first == "123456" {
		t.Fatal("hash must differ from the input")
	}
	if HashToken("123457") == first {
		t.Fatal("different inputs must hash differently")
	}
}
