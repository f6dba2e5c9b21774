// Package pipeline issues timed, cancellable requests to the five external
// generation endpoints and normalizes their responses into stage records.
package pipeline

import (
	"fmt"
	"time"
)

// Stage identifies one external generation endpoint.
type Stage string

const (
	StageDiscovery    Stage = "discovery"
	StageClustering   Stage = "clustering"
	StageTitles       Stage = "titles"
	StageOutline      Stage = "outline"
	StageFinalArticle Stage = "final_article"
)

// Stages lists every endpoint in pipeline order.
var Stages = []Stage{StageDiscovery, StageClustering, StageTitles, StageOutline, StageFinalArticle}

// ParseStage maps a stage name to a Stage.
func ParseStage(s string) (Stage, error) {
	for _, st := range Stages {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown stage %q", s)
}

// DefaultTimeout is the request bound for a stage: one minute for keyword
// discovery, five for everything else.
func DefaultTimeout(s Stage) time.Duration {
	if s == StageDiscovery {
		return 60 * time.Second
	}
	return 300 * time.Second
}
