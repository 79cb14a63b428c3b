package domain

// Tagged result types for each stage of the scoring pipeline. Every stage
// degrades to a zero value of its type instead of raising, so downstream
// stages never see a missing result.

// FetchResult is the outcome of fetching a single page.
type FetchResult struct {
	Status   int      `json:"status"`
	HTML     string   `json:"html"`
	FinalURL string   `json:"final_url"`
	Errors   []string `json:"errors,omitempty"`
	Retries  int      `json:"retries"`
	Insecure bool     `json:"insecure,omitempty"` // fetched with cert verification disabled
}

// Blocked reports whether the fetch hit an anti-bot wall.
func (r FetchResult) Blocked() bool {
	return r.Status == 401 || r.Status == 403 || r.Status == 429
}

// MultiFetchResult is the homepage plus prioritized sub-pages, concatenated
// with page-boundary markers.
type MultiFetchResult struct {
	Pages         map[string]FetchResult `json:"pages"`
	CombinedHTML  string                 `json:"combined_html"`
	FinalURL      string                 `json:"final_url"`
	Status        int                    `json:"status"`
	Errors        []string               `json:"errors,omitempty"`
	PriorityLinks []string               `json:"priority_links_discovered,omitempty"`
}

// SiteContent is the bounded summary handed to the AI scorer. Only what is
// listed here reaches the model; it must never infer unseen content.
type SiteContent struct {
	Title       string   `json:"title"`
	H1Tags      []string `json:"h1_tags"`
	H2Tags      []string `json:"h2_tags"`
	CTAButtons  []string `json:"cta_buttons"`
	NavLinks    []string `json:"nav_links"`
	ImageAlts   []string `json:"image_alts"`
	LinkTexts   []string `json:"link_texts"`
	TextExcerpt string   `json:"text_excerpt"`
}

type HeuristicScores struct {
	Mobile   int `json:"mobile"`
	Security int `json:"security"`
	SEO      int `json:"seo"`
	Contact  int `json:"contact"`
	Content  int `json:"content"`
	Tech     int `json:"tech"`
}

func (s HeuristicScores) Total() int {
	return s.Mobile + s.Security + s.SEO + s.Contact + s.Content + s.Tech
}

type ContactSummary struct {
	Emails int      `json:"emails"`
	Phones int      `json:"phones"`
	Forms  []string `json:"forms,omitempty"`
	CTAs   int      `json:"ctas"`
}

// Evidence collects the concrete signals the heuristic scorer found.
type Evidence struct {
	Viewport       string         `json:"viewport,omitempty"`
	HTTPS          bool           `json:"https,omitempty"`
	Title          string         `json:"title,omitempty"`
	H1             string         `json:"h1,omitempty"`
	EmailsFound    []string       `json:"emails_found,omitempty"`
	ContactForms   []string       `json:"contact_forms,omitempty"`
	ContactItems   []string       `json:"contact_items,omitempty"`
	CTAButtons     []string       `json:"cta_buttons,omitempty"`
	CTACount       int            `json:"cta_count,omitempty"`
	PriorityLinks  []string       `json:"priority_links,omitempty"`
	TextWordCount  int            `json:"text_word_count"`
	ContactSummary ContactSummary `json:"contact_detection_summary"`
	Errors         []string       `json:"errors,omitempty"`
}

// HeuristicResult is the deterministic 0-50 score with its evidence.
type HeuristicResult struct {
	Scores               HeuristicScores `json:"scores"`
	Total                int             `json:"total_heuristic"`
	Evidence             Evidence        `json:"evidence"`
	RenderingLimitations bool            `json:"rendering_limitations"`
}

// FrameworkDetection is the JS-heaviness signal. Informational only: it
// widens rendering limitations but never gates the pipeline.
type FrameworkDetection struct {
	IsJSHeavy      bool     `json:"is_js_heavy"`
	Confidence     float64  `json:"confidence"`
	Signals        []string `json:"signals,omitempty"`
	FrameworkHints []string `json:"framework_hints,omitempty"`
	TextWordCount  int      `json:"text_word_count"`
	ScriptCount    int      `json:"script_count"`
	ScriptRatio    float64  `json:"script_ratio"`
}

type CMSInfo struct {
	Name       string `json:"name"`
	Confidence string `json:"confidence"` // high|medium|low
}

type AnalyticsInfo struct {
	GoogleAnalytics bool     `json:"google_analytics"`
	MetaPixel       bool     `json:"meta_pixel"`
	Other           []string `json:"other,omitempty"`
}

type JQueryInfo struct {
	Present bool   `json:"present"`
	Version string `json:"version,omitempty"`
}

type PageBloat struct {
	ExternalScripts     int `json:"external_scripts"`
	ExternalStylesheets int `json:"external_stylesheets"`
	TotalExternal       int `json:"total_external"`
}

type OGTags struct {
	HasTitle bool `json:"has_og_title"`
	HasImage bool `json:"has_og_image"`
}

// TechResult is the detected technology stack for a site.
type TechResult struct {
	CMS              CMSInfo         `json:"cms"`
	CMSVersion       string          `json:"cms_version,omitempty"`
	SSL              bool            `json:"ssl"`
	MobileResponsive bool            `json:"mobile_responsive"`
	Analytics        AnalyticsInfo   `json:"analytics"`
	JQuery           JQueryInfo      `json:"jquery"`
	CookieConsent    bool            `json:"cookie_consent"`
	SocialLinks      map[string]bool `json:"social_links,omitempty"`
	PageBloat        PageBloat       `json:"page_bloat"`
	OGTags           OGTags          `json:"og_tags"`
	Favicon          bool            `json:"favicon"`
	Detected         bool            `json:"detected"`
}

type TechHealthItem struct {
	Label  string `json:"label"`
	Detail string `json:"detail"`
}

// TechHealth buckets detected attributes by fixed per-attribute policy.
type TechHealth struct {
	Green []TechHealthItem `json:"green"`
	Amber []TechHealthItem `json:"amber"`
	Red   []TechHealthItem `json:"red"`
}

type AICategoryScores struct {
	Brand      int `json:"brand"`
	Visual     int `json:"visual"`
	Conversion int `json:"conversion"`
	Trust      int `json:"trust"`
	A11y       int `json:"a11y"`
}

func (s AICategoryScores) Total() int {
	return s.Brand + s.Visual + s.Conversion + s.Trust + s.A11y
}

type PlainEnglishReport struct {
	Strengths              []string `json:"strengths"`
	Weaknesses             []string `json:"weaknesses"`
	TechnologyObservations string   `json:"technology_observations"`
	SalesOpportunities     []string `json:"sales_opportunities"`
}

// AIResult is the model's 0-50 review. A failed call yields the zero value
// with InsufficientEvidence set and Confidence 0.
type AIResult struct {
	CategoryScores       AICategoryScores   `json:"category_scores"`
	Justifications       map[string]string  `json:"justifications,omitempty"`
	Report               PlainEnglishReport `json:"plain_english_report"`
	InsufficientEvidence bool               `json:"insufficient_evidence"`
	Confidence           float64            `json:"confidence"`
}

// CombinedResult is the orchestrator's final output: heuristic + AI on a
// 0-100 scale, plus everything a caller needs to render or persist.
type CombinedResult struct {
	FinalScore     int              `json:"final_score"`
	Confidence     float64          `json:"confidence"`
	HeuristicScore int              `json:"heuristic_score"`
	AIScore        int              `json:"ai_score"`
	Heuristic      HeuristicScores  `json:"heuristic_breakdown"`
	AI             AICategoryScores `json:"ai_breakdown"`

	Evidence             Evidence           `json:"evidence"`
	AIJustifications     map[string]string  `json:"ai_justifications,omitempty"`
	Report               PlainEnglishReport `json:"plain_english_report"`
	RenderingLimitations bool               `json:"rendering_limitations"`
	InsufficientEvidence bool               `json:"insufficient_evidence"`

	Technographics *TechResult `json:"technographics,omitempty"`
	JSDetected     bool        `json:"js_detected"`
	FrameworkHints []string    `json:"framework_hints,omitempty"`

	Cached     bool     `json:"cached"`
	HasErrors  bool     `json:"has_errors"`
	BotBlocked bool     `json:"bot_blocked,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}
