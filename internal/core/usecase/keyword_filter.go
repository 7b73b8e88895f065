package usecase

import (
	"strings"

	"github.com/kirillkom/weekly-issue/internal/core/domain"
)

var DefaultKeywords = []string{
	"가상자산", "감사보고서", "강화", "강세", "개최", "거래", "거짓", "게임 매출", "결과", "결의", "결정", "계약", "계약 체결", "공개",
	"공매도", "공시", "기술", "기록", "규탄", "갱신", "기각", "급등",
	"누적", "단행", "달성", "대비", "대표이사", "돌파", "론칭",
	"매입", "매출", "매출액", "매수세", "미공개",
	"메타버스", "발행", "베타", "변동", "부진", "북미", "분기", "법적 대응", "법적",
	"블록체인", "비용", "사업", "사외이사", "사전", "사전 예약", "사전예약", "상장", "상장폐지", "상승 마감",
	"상향", "상향 조정", "선임", "선정", "설립", "소각", "소송", "소집", "수혜",
	"순손실", "신규", "신작",
	"실적", "실적발표", "업데이트", "영업손실", "영업이익", "예약", "예정", "예고", "오픈", "온라인", "온보딩",
	"완료", "위믹스", "유상증자", "유지", "이상", "인건비", "인수", "자기주식",
	"자사주", "자본", "자본 잠식", "적자전환", "전략", "전환", "장중", "잠식",
	"정기주주총회", "정식", "제출", "조정", "종가", "주당", "주식회사", "주요", "주주총회", "주총", "중국",
	"증가", "지급", "지분", "지속", "지속가능경영보고서", "참가",
	"참여", "처분", "체결", "최대", "최초", "추진", "출시", "취득", "테스트",
	"투자", "투자 단행", "파트너십", "파트너십 체결", "판호", "퍼블리싱", "퍼블리싱 계약",
	"한한령", "항소", "항고", "하향", "하락", "합병", "현금배당", "협력", "협약", "협약 체결", "확대", "확장",
	"획득", "흑자전환", "흥행",
	"ESG", "%", "DLC", "1위", "ai", "cbt", "ip", "mou", "nft",
}

type keywordEntry struct {
	original string
	folded   string
}

// KeywordFilter keeps items whose title contains at least one lexicon entry.
// Matching is case-insensitive substring containment, not word matching.
type KeywordFilter struct {
	entries []keywordEntry
}

func NewKeywordFilter(keywords []string) *KeywordFilter {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	entries := make([]keywordEntry, 0, len(keywords))
	for _, keyword := range keywords {
		folded := strings.ToLower(keyword)
		if strings.TrimSpace(folded) == "" {
			continue
		}
		entries = append(entries, keywordEntry{original: keyword, folded: folded})
	}
	return &KeywordFilter{entries: entries}
}

func (f *KeywordFilter) Filter(items []domain.RawNewsItem) []domain.FilteredItem {
	out := make([]domain.FilteredItem, 0, len(items))
	for _, item := range items {
		matched := f.Match(item.Title)
		if len(matched) == 0 {
			continue
		}
		out = append(out, domain.FilteredItem{
			RawNewsItem:     item,
			MatchedKeywords: matched,
		})
	}
	return out
}

func (f *KeywordFilter) Match(title string) []string {
	folded := strings.ToLower(title)
	var matched []string
	for _, entry := range f.entries {
		if strings.Contains(folded, entry.folded) {
			matched = append(matched, entry.original)
		}
	}
	return matched
}
