package pipeline

import "github.com/jorge-barreto/blogflow/internal/cluster"

// Identity is the correlation block carried by every request.
type Identity struct {
	WorkflowID string `json:"workflow_id"`
	UserID     string `json:"user_id"`
	SessionID  string `json:"session_id"`
}

// DiscoveryRequest is the keyword discovery payload.
type DiscoveryRequest struct {
	Keyword  string `json:"keyword"`
	Language string `json:"language"`
	Country  string `json:"country"`
	Depth    int    `json:"depth"`
	Limit    int    `json:"limit"`
	Identity
}

// ClusteringRequest is the clustering payload.
type ClusteringRequest struct {
	Keywords        []DiscoveredKeyword `json:"keywords"`
	OriginalKeyword string              `json:"original_keyword"`
	Identity
}

// TitlesRequest carries every cluster, annotated with status and priority.
type TitlesRequest struct {
	Clusters        []cluster.Group `json:"clusters"`
	OriginalKeyword string          `json:"original_keyword"`
	Identity
}

// OutlineRequest carries the chosen title option.
type OutlineRequest struct {
	TitleOption
	BlogID          int    `json:"blog_id"`
	OriginalKeyword string `json:"original_keyword"`
	Identity
}

// FinalArticleRequest carries the edited outline form.
type FinalArticleRequest struct {
	BlogID         int    `json:"blog_id"`
	Title          string `json:"title"`
	NewTitle       string `json:"new_title"`
	Keyword        string `json:"keyword"`
	OutlineID      string `json:"outline_id"`
	PromptID       string `json:"prompt_id"`
	Outline        string `json:"outline"`
	BodyPrompt     string `json:"body_prompt"`
	TargetAudience string `json:"target_audience"`
	Goal           string `json:"goal"`
	Identity
}
