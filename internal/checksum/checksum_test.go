package checksum

import (
	"testing"
)

var questHeaders = []string{"#", "Name", "Difficulty", "Length", "QP", "Series", "Release date"}

func TestHeaderFingerprint(t *testing.T) {
	gen := NewGenerator()

	hash1 := gen.HeaderFingerprint(questHeaders)
	hash2 := gen.HeaderFingerprint(questHeaders)

	// Хеш должен быть детерминированным
	if hash1 != hash2 {
		t.Errorf("Hash not deterministic: %s != %s", hash1, hash2)
	}

	// Хеш должен быть 64 символа (SHA256 hex)
	if len(hash1) != 64 {
		t.Errorf("Hash wrong length: %d, expected 64", len(hash1))
	}

	// Регистр и лишние пробелы не важны
	hash3 := gen.HeaderFingerprint([]string{"#", " name ", "DIFFICULTY", "Length", "QP", "Series", "Release   date"})
	if hash1 != hash3 {
		t.Errorf("Hash should ignore case and whitespace: %s != %s", hash1, hash3)
	}

	// Перестановка колонок должна менять хеш
	swapped := []string{"#", "Difficulty", "Name", "Length", "QP", "Series", "Release date"}
	if hash1 == gen.HeaderFingerprint(swapped) {
		t.Errorf("Hash should change when columns are reordered")
	}
}

func TestVerifyHeaderFingerprint(t *testing.T) {
	gen := NewGenerator()
	hash := gen.HeaderFingerprint(questHeaders)

	if !gen.VerifyHeaderFingerprint(hash, questHeaders) {
		t.Errorf("VerifyHeaderFingerprint failed for correct headers")
	}

	if gen.VerifyHeaderFingerprint(hash, questHeaders[:6]) {
		t.Errorf("VerifyHeaderFingerprint should fail for missing column")
	}
}
