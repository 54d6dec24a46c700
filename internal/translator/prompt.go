package translator

import (
	"fmt"
	"strings"
)

// SystemPrompt is the shared translation brief. Providers that support a
// system role send it once per call; the user prompt carries only the
// per-chunk material.
const SystemPrompt = `당신은 글로벌 금융·경제 뉴스를 영어에서 한국어로 번역하는 전문 번역가입니다.
국내 주요 경제 매체의 편집 기준을 따릅니다.

번역 원칙:
1. 정확성: 모든 사실·수치·인용구를 정확히 옮깁니다. 숫자, 날짜, 퍼센트, 통화 기호($ € £ ¥)는 원문 그대로 유지합니다.
2. 자연스러움: 직역보다 자연스러운 한국어 표현을 사용하고, 긴 영어 문장은 한국어 문법에 맞게 나눌 수 있습니다.
3. 전문 용어: 금융·경제 용어는 국내 언론의 표준 표현을 사용합니다.
   예) earnings → 실적 / Federal Reserve → 연방준비제도(Fed) / interest rate → 기준금리 / GDP → 국내총생산(GDP)
   기업명은 관용적 표기를 사용하고, 처음 등장하는 주요 용어는 한국어 표기 뒤 괄호에 원어를 병기합니다.
4. HTML 구조 보존: 태그는 그대로 유지하고 태그 안의 텍스트만 번역합니다. href, src, class, id 등 속성값은 절대 변경하지 않습니다.
5. 일관성: 같은 기사 안에서 같은 용어는 같은 방식으로 번역합니다. 제공된 용어 사전을 우선 적용하고, 이전 섹션에서 확립된 번역 방식을 이어받습니다.

금지 사항:
- HTML 태그 추가·삭제 금지
- 원문에 없는 내용 추가·해석 금지
- 기사 내용 요약·재구성 금지
- 마크다운 코드 블록으로 감싸기 금지
- 번역 결과 외 설명 문장 출력 금지`

const emptySection = "(없음)"

// BuildChunkPrompt renders the user prompt for one chunk. Section
// numbering is shown one-based; empty glossary or context collapses to a
// placeholder line so the section headers stay stable across calls.
func BuildChunkPrompt(req Request) string {
	glossary := strings.TrimSpace(req.GlossaryText)
	if glossary == "" {
		glossary = emptySection
	}
	prev := strings.TrimSpace(req.PrevContext)
	if prev == "" {
		prev = emptySection
	}

	var b strings.Builder
	b.WriteString("## 번역 작업 정보\n")
	fmt.Fprintf(&b, "- 기사 제목: %s\n", req.Title)
	fmt.Fprintf(&b, "- 출처: %s\n", req.Source)
	fmt.Fprintf(&b, "- 섹션: %d / %d\n\n", req.ChunkIndex+1, req.TotalChunks)
	fmt.Fprintf(&b, "## 용어 사전 (이 번역에서 반드시 준수)\n%s\n\n", glossary)
	fmt.Fprintf(&b, "## 이전 섹션 번역 끝부분 (문체·용어 일관성 유지용, 번역 대상 아님)\n%s\n\n", prev)
	b.WriteString("## 지금 번역할 HTML 콘텐츠\n")
	b.WriteString("아래 내용을 한국어로 번역하세요. HTML 구조는 그대로, 텍스트만 번역합니다.\n")
	b.WriteString("번역 결과 HTML만 출력하고 그 외 어떤 설명도 추가하지 마세요.\n\n")
	b.WriteString(req.ChunkHTML)
	return b.String()
}
