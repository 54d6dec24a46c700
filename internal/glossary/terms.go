package glossary

import "strings"

// Canonical Korean renderings for financial terms and company names,
// keyed by lowercase surface form. Multi-word phrases are matched
// longest-first during extraction.
var domainTerms = map[string]string{
	// terminology
	"earnings":          "실적",
	"fiscal year":       "회계연도",
	"ipo":               "기업공개(IPO)",
	"bull market":       "강세장",
	"bear market":       "약세장",
	"guidance":          "가이던스",
	"layoff":            "감원",
	"layoffs":           "감원",
	"federal reserve":   "연방준비제도(Fed)",
	"the fed":           "연방준비제도(Fed)",
	"fomc":              "연방공개시장위원회(FOMC)",
	"interest rate":     "기준금리",
	"interest rates":    "기준금리",
	"gdp":               "국내총생산(GDP)",
	"inflation":         "인플레이션",
	"recession":         "경기 침체",
	"tariff":            "관세",
	"tariffs":           "관세",
	"market cap":        "시가총액",
	"hedge fund":        "헤지펀드",
	"venture capital":   "벤처캐피털",
	"data center":       "데이터센터",
	"data centers":      "데이터센터",
	"chipmaker":         "반도체 기업",
	"quarterly revenue": "분기 매출",

	// company names
	"apple":     "애플",
	"google":    "구글",
	"alphabet":  "알파벳",
	"meta":      "메타",
	"microsoft": "마이크로소프트",
	"amazon":    "아마존",
	"tesla":     "테슬라",
	"nvidia":    "엔비디아",
	"openai":    "오픈AI",
	"intel":     "인텔",
	"samsung":   "삼성전자",
	"tsmc":      "TSMC",
}

// longest phrase length in domainTerms, in words
const maxPhraseWords = 2

// lookupDomain returns the canonical rendering for a surface form, if
// the domain list has one.
func lookupDomain(surface string) (string, bool) {
	target, ok := domainTerms[strings.ToLower(surface)]
	return target, ok
}
