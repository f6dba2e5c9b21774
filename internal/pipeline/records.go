package pipeline

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jorge-barreto/blogflow/internal/cluster"
	"github.com/jorge-barreto/blogflow/internal/common"
)

// ID is an upstream identifier that arrives either as a string or a number.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// DiscoveredKeyword is one keyword returned by keyword discovery.
type DiscoveredKeyword struct {
	Keyword string `json:"keyword"`
	cluster.Metrics
}

// DiscoveryResult is the keyword discovery record.
type DiscoveryResult struct {
	Keywords []DiscoveredKeyword `json:"keywords"`
}

// ClusteringResult is the clustering record.
type ClusteringResult struct {
	Clusters []cluster.Group `json:"clusters"`
}

// TitleOption is one generated title/description candidate.
type TitleOption struct {
	Keyword     string         `json:"keyword"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Type        string         `json:"type"`
	ClusterName string         `json:"cluster_name"`
	Reasoning   string         `json:"reasoning"`
	Status      cluster.Status `json:"status"`
}

// TitlesResult is the title/description record.
type TitlesResult struct {
	Options []TitleOption `json:"titles"`
}

// OutlineRecord is the outline/body-prompt record. The upstream service
// names the regenerated title new_title and the original one Title.
type OutlineRecord struct {
	NewTitle       string `json:"new_title"`
	Title          string `json:"Title"`
	Keyword        string `json:"keyword"`
	Outline        string `json:"outline"`
	BodyPrompt     string `json:"body_prompt"`
	TargetAudience string `json:"target_audience"`
	Goal           string `json:"goal"`
	OutlineID      ID     `json:"outline_id"`
	PromptID       ID     `json:"prompt_id"`
}

// FinalArticleRecord is the assembled article record.
type FinalArticleRecord struct {
	NewTitle        string `json:"new_title"`
	Title           string `json:"Title"`
	Keyword         string `json:"keyword"`
	Article         string `json:"final_article"`
	MetaDescription string `json:"meta_description"`
	BlogID          ID     `json:"blog_id"`
}

// DecodeDiscovery decodes a normalized discovery record.
func DecodeDiscovery(raw json.RawMessage) (*DiscoveryResult, error) {
	var wire struct {
		Keywords *[]DiscoveredKeyword `json:"keywords"`
	}
	if err := decode(StageDiscovery, raw, &wire); err != nil {
		return nil, err
	}
	if wire.Keywords == nil {
		return nil, common.Malformed(string(StageDiscovery), "missing keywords")
	}
	out := &DiscoveryResult{}
	for _, kw := range *wire.Keywords {
		kw.Keyword = strings.TrimSpace(kw.Keyword)
		if kw.Keyword == "" {
			continue
		}
		out.Keywords = append(out.Keywords, kw)
	}
	return out, nil
}

// DecodeClusters decodes a normalized clustering record. At least one named
// cluster is required.
func DecodeClusters(raw json.RawMessage) (*ClusteringResult, error) {
	var out ClusteringResult
	if err := decode(StageClustering, raw, &out); err != nil {
		return nil, err
	}
	if len(out.Clusters) == 0 {
		return nil, common.Malformed(string(StageClustering), "no clusters")
	}
	for i, g := range out.Clusters {
		if strings.TrimSpace(g.Name) == "" {
			return nil, common.Malformed(string(StageClustering), "cluster %d has no name", i+1)
		}
	}
	return &out, nil
}

// DecodeTitles decodes a normalized title/description record. Options
// without a status default to SelectForBlog.
func DecodeTitles(raw json.RawMessage) (*TitlesResult, error) {
	var out TitlesResult
	if err := decode(StageTitles, raw, &out); err != nil {
		return nil, err
	}
	if len(out.Options) == 0 {
		return nil, common.Malformed(string(StageTitles), "no title options")
	}
	for i := range out.Options {
		if strings.TrimSpace(out.Options[i].Title) == "" {
			return nil, common.Malformed(string(StageTitles), "title option %d has no title", i+1)
		}
		if !out.Options[i].Status.Valid() {
			out.Options[i].Status = cluster.StatusSelect
		}
	}
	return &out, nil
}

// DecodeOutline decodes a normalized outline record.
func DecodeOutline(raw json.RawMessage) (*OutlineRecord, error) {
	var out OutlineRecord
	if err := decode(StageOutline, raw, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.Outline) == "" {
		return nil, common.Malformed(string(StageOutline), "missing outline")
	}
	return &out, nil
}

// DecodeFinalArticle decodes a normalized final-article record.
func DecodeFinalArticle(raw json.RawMessage) (*FinalArticleRecord, error) {
	var out FinalArticleRecord
	if err := decode(StageFinalArticle, raw, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.Article) == "" {
		return nil, common.Malformed(string(StageFinalArticle), "missing final_article")
	}
	return &out, nil
}

func decode(stage Stage, raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return common.Malformed(string(stage), "decode record: %v", err)
	}
	return nil
}

// String renders the id for logs and payloads.
func (id ID) String() string {
	return string(id)
}

// Int returns the id as an integer when it is numeric.
func (id ID) Int() (int, bool) {
	n, err := strconv.Atoi(string(id))
	return n, err == nil
}
