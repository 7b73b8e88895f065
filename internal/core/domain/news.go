package domain

type RawNewsItem struct {
	Company      string `json:"company"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Link         string `json:"link"`
	PublishedRaw string `json:"published_raw"`
}

type FilteredItem struct {
	RawNewsItem
	MatchedKeywords []string `json:"matched_keywords"`
}

type ClassifiedItem struct {
	FilteredItem
	ClassificationLabel      string  `json:"classification_label"`
	ClassificationConfidence float64 `json:"classification_confidence"`
}

const (
	FallbackClassificationLabel      = "important"
	FallbackClassificationConfidence = 0.7

	DefaultCategory  = "general"
	DefaultSentiment = "neutral"
)

type SummaryOrigin string

const (
	SummaryOriginModel                SummaryOrigin = "model"
	SummaryOriginFallbackEmpty        SummaryOrigin = "fallback_empty"
	SummaryOriginFallbackAPIError     SummaryOrigin = "fallback_api_error"
	SummaryOriginFallbackNetworkError SummaryOrigin = "fallback_network_error"
	SummaryOriginFallbackUnknownError SummaryOrigin = "fallback_unknown_error"
)

func (o SummaryOrigin) IsFallback() bool {
	return o != SummaryOriginModel
}

type SummaryResult struct {
	ID              string        `json:"id"`
	Company         string        `json:"corp"`
	Summary         string        `json:"summary"`
	SummaryOrigin   SummaryOrigin `json:"summary_type"`
	OriginalTitle   string        `json:"original_title"`
	Description     string        `json:"description,omitempty"`
	Label           string        `json:"label"`
	Confidence      float64       `json:"confidence"`
	MatchedKeywords []string      `json:"matched_keywords"`
	NewsURL         string        `json:"news_url"`
	PublishedDate   string        `json:"published_date"`
	Category        string        `json:"category"`
	Sentiment       string        `json:"sentiment"`
}

type PipelineRunStats struct {
	TotalCollected      int      `json:"total_collected"`
	AfterKeywordFilter  int      `json:"after_keyword_filter"`
	AfterDeduplication  int      `json:"after_deduplication"`
	AfterClassification int      `json:"after_classification"`
	FinalSummaries      int      `json:"final_summaries"`
	Companies           []string `json:"companies_processed"`
}

type PipelineStage string

const (
	StageCollecting    PipelineStage = "collecting"
	StageFiltering     PipelineStage = "filtering"
	StageDeduplicating PipelineStage = "deduplicating"
	StageClassifying   PipelineStage = "classifying"
	StageSummarizing   PipelineStage = "summarizing"
	StageDone          PipelineStage = "done"
)

type RunStatus string

const (
	RunStatusSuccess RunStatus = "success"
	RunStatusError   RunStatus = "error"
)

// PipelineRun sets EmptyAt when a stage produced no items and the run stopped early.
type PipelineRun struct {
	Status  RunStatus        `json:"status"`
	Message string           `json:"message"`
	Stats   PipelineRunStats `json:"stats"`
	EmptyAt PipelineStage    `json:"empty_at,omitempty"`
	Results []SummaryResult  `json:"results"`
}

func (r PipelineRun) Succeeded() bool {
	return r.Status == RunStatusSuccess
}

// FinalStage is the stage a successful run ended in. Error runs report "".
func (r PipelineRun) FinalStage() PipelineStage {
	switch {
	case !r.Succeeded():
		return ""
	case r.EmptyAt != "":
		return r.EmptyAt
	default:
		return StageDone
	}
}
