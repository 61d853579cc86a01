package experiments

import (
	"sort"
	"time"
)

// Summary aggregates the episodes of one agent config.
type Summary struct {
	Agent       int
	Episodes    int
	SuccessRate float64 // share of episodes with a positive return
	MeanReturn  float64
	MeanSteps   float64
	Throughput  float64 // search iterations per second
}

// Summarize aggregates results per agent, ordered by agent id.
func Summarize(result Result) []Summary {
	byEpisode := make(map[string]int, len(result.Episodes))
	summaries := map[int]*Summary{}
	for _, record := range result.Episodes {
		byEpisode[record.ID] = record.Agent
		s, ok := summaries[record.Agent]
		if !ok {
			s = &Summary{Agent: record.Agent}
			summaries[record.Agent] = s
		}
		s.Episodes++
		s.MeanReturn += record.Return
		s.MeanSteps += float64(record.TotalSteps)
		if record.Return > 0 {
			s.SuccessRate++
		}
	}

	iterations := map[int]int{}
	durations := map[int]time.Duration{}
	for _, step := range result.Steps {
		agent, ok := byEpisode[step.Episode]
		if !ok {
			continue
		}
		iterations[agent] += step.Episodes
		durations[agent] += step.Duration
	}

	out := make([]Summary, 0, len(summaries))
	for agent, s := range summaries {
		n := float64(s.Episodes)
		s.MeanReturn /= n
		s.MeanSteps /= n
		s.SuccessRate /= n
		if d := durations[agent]; d > 0 {
			s.Throughput = float64(iterations[agent]) / d.Seconds()
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Agent < out[j].Agent })
	return out
}
