package reconciler

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

type stubSmoother struct {
	calls []string
	fn    func(seam string) (string, error)
}

func (s *stubSmoother) Smooth(_ context.Context, seam string) (string, error) {
	s.calls = append(s.calls, seam)
	if s.fn != nil {
		return s.fn(seam)
	}
	return seam, nil
}

func genWords(prefix string, n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return strings.Join(w, " ")
}

func para(text string) string {
	return "<p>" + text + "</p>"
}

func TestAssemble(t *testing.T) {
	if got := Assemble(nil); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
	if got := Assemble([]string{"<p>하나</p>"}); got != "<p>하나</p>" {
		t.Errorf("unexpected single-chunk assembly %q", got)
	}
	got := Assemble([]string{"<p>하나</p>", "<p>둘</p>"})
	if got != "<p>하나</p>\n<p>둘</p>" {
		t.Errorf("unexpected assembly %q", got)
	}
}

func TestReconcile_SingleChunkSkipsSmoothing(t *testing.T) {
	stub := &stubSmoother{}
	r := New(stub, 0, nil)

	got, err := r.Reconcile(context.Background(), []string{"<p>하나의 청크</p>"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "<p>하나의 청크</p>" {
		t.Errorf("unexpected result %q", got)
	}
	if len(stub.calls) != 0 {
		t.Errorf("smoother must not run for a single chunk, got %d calls", len(stub.calls))
	}
}

func TestReconcile_NilSmootherAssembles(t *testing.T) {
	r := New(nil, 0, nil)

	chunks := []string{"<p>첫 번째</p>", "<p>두 번째</p>"}
	got, err := r.Reconcile(context.Background(), chunks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != Assemble(chunks) {
		t.Errorf("expected raw assembly, got %q", got)
	}
}

func TestReconcile_IdentityRewriteReassemblesExactly(t *testing.T) {
	stub := &stubSmoother{}
	r := New(stub, 0, nil)

	chunks := []string{
		para(genWords("a", 100)),
		para(genWords("b", 100)),
		para(genWords("c", 100)),
	}
	got, err := r.Reconcile(context.Background(), chunks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != Assemble(chunks) {
		t.Error("identity smoothing must reproduce the raw assembly")
	}
	if len(stub.calls) != 2 {
		t.Errorf("expected 2 seams for 3 chunks, got %d", len(stub.calls))
	}
}

func TestReconcile_OnlySeamWindowsOffered(t *testing.T) {
	stub := &stubSmoother{}
	r := New(stub, 0, nil)

	chunks := []string{para(genWords("a", 100)), para(genWords("b", 100))}
	if _, err := r.Reconcile(context.Background(), chunks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stub.calls) != 1 {
		t.Fatalf("expected 1 seam, got %d", len(stub.calls))
	}

	seam := stub.calls[0]
	for _, want := range []string{"a60", "a99", "b0", "b39"} {
		if !strings.Contains(seam, want) {
			t.Errorf("seam missing window word %q", want)
		}
	}
	for _, wrong := range []string{"a59", "b40"} {
		if strings.Contains(seam, wrong+" ") || strings.HasSuffix(seam, wrong) {
			t.Errorf("seam leaked interior word %q", wrong)
		}
	}
	if strings.Contains(seam, "<p>") {
		t.Error("seam must carry placeholder markers, not raw tags")
	}
}

func TestReconcile_SmootherErrorFallsBack(t *testing.T) {
	stub := &stubSmoother{fn: func(string) (string, error) {
		return "", fmt.Errorf("model unavailable")
	}}
	r := New(stub, 0, nil)

	chunks := []string{"<p>첫 번째 문단이다</p>", "<p>두 번째 문단이다</p>"}
	got, err := r.Reconcile(context.Background(), chunks)
	if err != nil {
		t.Fatalf("seam failure must not fail the document: %v", err)
	}
	if got != Assemble(chunks) {
		t.Errorf("expected raw assembly fallback, got %q", got)
	}
}

func TestReconcile_DroppedMarkerRejected(t *testing.T) {
	stub := &stubSmoother{fn: func(seam string) (string, error) {
		return strings.ReplaceAll(seam, "[PH0]", ""), nil
	}}
	r := New(stub, 0, nil)

	chunks := []string{"<p>시장은 강세로 마감했다</p>", "<p>한편 연준은 금리를 동결했다</p>"}
	got, err := r.Reconcile(context.Background(), chunks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != Assemble(chunks) {
		t.Errorf("expected fallback after dropped marker, got %q", got)
	}
}

func TestReconcile_ChangedDigitsRejected(t *testing.T) {
	stub := &stubSmoother{fn: func(seam string) (string, error) {
		return strings.ReplaceAll(seam, "35", "53"), nil
	}}
	r := New(stub, 0, nil)

	chunks := []string{"<p>매출은 35 퍼센트 늘었다</p>", "<p>이익도 함께 증가했다</p>"}
	got, err := r.Reconcile(context.Background(), chunks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != Assemble(chunks) {
		t.Errorf("expected fallback after digit change, got %q", got)
	}
}

func TestReconcile_AcceptedRewriteIsRestored(t *testing.T) {
	stub := &stubSmoother{fn: func(seam string) (string, error) {
		return strings.Replace(seam, "한편", "이와 함께", 1), nil
	}}
	r := New(stub, 0, nil)

	chunks := []string{"<p>시장은 강세로 마감했다</p>", "<p>한편 연준은 금리를 동결했다</p>"}
	got, err := r.Reconcile(context.Background(), chunks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "<p>시장은 강세로 마감했다</p>\n<p>이와 함께 연준은 금리를 동결했다</p>"
	if got != want {
		t.Errorf("expected restored rewrite\nwant %q\ngot  %q", want, got)
	}
}

func TestReconcile_InteriorNeverRewritten(t *testing.T) {
	stub := &stubSmoother{fn: func(seam string) (string, error) {
		// Aggressive rewrite inside the window only.
		return strings.ReplaceAll(seam, "a9", "x9"), nil
	}}
	r := New(stub, 0, nil)

	chunks := []string{para(genWords("a", 100)), para(genWords("b", 100))}
	got, err := r.Reconcile(context.Background(), chunks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "a0 a1") {
		t.Error("interior of first chunk must survive verbatim")
	}
	if !strings.Contains(got, "x99") {
		t.Error("window rewrite must land in the output")
	}
	if strings.Contains(got, "a99") {
		t.Error("window word should have been rewritten")
	}
}

func TestReconcile_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(&stubSmoother{}, 0, nil)
	_, err := r.Reconcile(ctx, []string{"<p>하나</p>", "<p>둘</p>"})
	if err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestSplitAtWord(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		n      int
		prefix string
		suffix string
	}{
		{"middle", "하나 둘 셋", 1, "하나", " 둘 셋"},
		{"zero", "하나 둘 셋", 0, "", "하나 둘 셋"},
		{"beyond", "하나 둘 셋", 5, "하나 둘 셋", ""},
		{"tag separates words", "<p>a b</p><p>c d</p>", 2, "<p>a b</p><p>", "c d</p>"},
		{"trailing markup stays left", "<p>a</p>", 1, "<p>a</p>", ""},
		{"empty", "", 3, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefix, suffix := splitAtWord(tt.in, tt.n)
			if prefix != tt.prefix || suffix != tt.suffix {
				t.Errorf("splitAtWord(%q, %d) = %q, %q; want %q, %q",
					tt.in, tt.n, prefix, suffix, tt.prefix, tt.suffix)
			}
			if prefix+suffix != tt.in {
				t.Errorf("halves must rejoin to the input, got %q + %q", prefix, suffix)
			}
		})
	}
}

func TestCheckSeam(t *testing.T) {
	markers := []string{"<p>", "</p>"}
	original := "[PH0]매출 35 퍼센트[PH1]"

	tests := []struct {
		name     string
		smoothed string
		wantErr  bool
	}{
		{"unchanged", "[PH0]매출 35 퍼센트[PH1]", false},
		{"reworded", "[PH0]매출이 35 퍼센트로[PH1]", false},
		{"dropped marker", "[PH0]매출 35 퍼센트", true},
		{"duplicated marker", "[PH0]매출 35 퍼센트[PH1][PH1]", true},
		{"invented marker", "[PH0]매출 35 퍼센트[PH1][PH7]", true},
		{"changed digits", "[PH0]매출 53 퍼센트[PH1]", true},
		{"dropped digits", "[PH0]매출 퍼센트[PH1]", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkSeam(original, tt.smoothed, markers)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkSeam() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
