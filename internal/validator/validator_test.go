package validator

import (
	"testing"

	"github.com/valpere/newstran/internal/detector"
)

// One detector for the whole test run; building it per test is slow.
var testDet = detector.NewEnglishKorean()

func TestIsValid_EmptyTargetLang(t *testing.T) {
	v := New(testDet)

	valid, err := v.IsValid("<p>Some translated text</p>", "")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !valid {
		t.Error("expected valid=true for empty targetLang")
	}
}

func TestIsValid_EmptyTranslation(t *testing.T) {
	v := New(testDet)

	valid, err := v.IsValid("", "ko")
	if err == nil {
		t.Error("expected error for empty translation")
	}
	if valid {
		t.Error("expected valid=false for empty translation")
	}
}

func TestIsValid_MarkupOnlyTranslation(t *testing.T) {
	v := New(testDet)

	valid, err := v.IsValid("<p>   </p>", "ko")
	if err == nil {
		t.Error("expected error for markup-only translation")
	}
	if valid {
		t.Error("expected valid=false for markup-only translation")
	}
}

func TestIsValid_ShortText(t *testing.T) {
	v := New(testDet)

	valid, err := v.IsValid("<p>안녕</p>", "ko")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !valid {
		t.Error("expected valid=true for short text (below threshold)")
	}
}

func TestIsValid_KoreanTranslation(t *testing.T) {
	v := New(testDet)

	text := "<p>연방준비제도가 기준금리를 동결하면서 뉴욕 증시는 상승 마감했다.</p>"
	valid, err := v.IsValid(text, "ko")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !valid {
		t.Error("expected valid=true when detecting Korean as Korean")
	}
}

func TestIsValid_UntranslatedEnglish(t *testing.T) {
	v := New(testDet)

	text := "<p>The Federal Reserve held interest rates steady and stocks closed higher.</p>"
	valid, err := v.IsValid(text, "ko")
	if err == nil {
		t.Error("expected error when translation came back in English")
	}
	if valid {
		t.Error("expected valid=false when expecting Korean but detecting English")
	}
}

func TestIsValid_MarkupDoesNotSkewDetection(t *testing.T) {
	v := New(testDet)

	// Tag names are English; only the text content should be judged.
	text := `<h2>금리 동결</h2><p>연준은 물가 안정세를 근거로 <b>기준금리</b>를 유지하기로 결정했다.</p>`
	valid, err := v.IsValid(text, "ko")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !valid {
		t.Error("expected valid=true for Korean text wrapped in HTML")
	}
}

func TestIsValid_CaseInsensitiveTargetLang(t *testing.T) {
	v := New(testDet)

	text := "<p>데이터센터 매출이 분기 기준 사상 최고치를 기록했다.</p>"
	valid, err := v.IsValid(text, "KO")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !valid {
		t.Error("expected valid=true for case-insensitive targetLang")
	}
}
