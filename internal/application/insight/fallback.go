package insight

import (
	"fmt"
	"sort"

	domain "github.com/bryanwahyu/gitgrade/internal/domain/analysis"
)

// roadmapItems maps each dimension to its improvement template.
var roadmapItems = map[domain.Dimension]domain.RoadmapItem{
	domain.DimCodeQuality: {
		Item:   "Reduce code complexity and improve maintainability",
		Reason: "Lower complexity makes code easier to understand and modify",
	},
	domain.DimArchitecture: {
		Item:   "Improve folder structure and separation of concerns",
		Reason: "Clean architecture makes the codebase more maintainable",
	},
	domain.DimDocumentation: {
		Item:   "Add a comprehensive README with setup and usage instructions",
		Reason: "Good documentation helps users and shows professionalism",
	},
	domain.DimTesting: {
		Item:   "Implement unit tests for core functionality",
		Reason: "Tests improve reliability and make refactoring safer",
	},
	domain.DimSecurity: {
		Item:   "Pin dependencies and keep secrets out of the repository",
		Reason: "Security best practices are essential for production code",
	},
	domain.DimGitWorkflow: {
		Item:   "Use conventional commit messages and a consistent workflow",
		Reason: "Clear commit history shows professional development practices",
	},
	domain.DimRealWorld: {
		Item:   "Add production-ready features and deployment instructions",
		Reason: "Shows the project is ready for real-world use",
	},
	domain.DimInnovation: {
		Item:   "Implement advanced features or unique solutions",
		Reason: "Innovation demonstrates technical depth and creativity",
	},
}

// fallbackRoadmapSize: roadmap items come from the weakest dimensions only.
const fallbackRoadmapSize = 3

// Fallback computes summary and roadmap purely from the scored result.
// Deterministic: identical results yield identical insights.
func Fallback(res *domain.ScoredResult) domain.Insight {
	if res == nil || len(res.Dimensions) == 0 {
		return Static()
	}
	return domain.Insight{
		Summary:     fallbackSummary(res),
		Roadmap:     fallbackRoadmap(res),
		GeneratedBy: domain.GeneratedByFallback,
	}
}

// Static is the last resort when even the fallback has nothing to work with.
func Static() domain.Insight {
	return domain.Insight{
		Summary: "Analysis completed. Review the dimension scores and signals for details.",
		Roadmap: []domain.RoadmapItem{
			{
				Item:   "Review the lowest-scoring dimensions",
				Reason: "Each dimension lists the signals behind its score",
			},
		},
		GeneratedBy: domain.GeneratedByStatic,
	}
}

func fallbackSummary(res *domain.ScoredResult) string {
	score, level := res.TotalScore, res.SkillLevel
	switch {
	case score >= 80:
		return fmt.Sprintf("This repository demonstrates strong software engineering practices with a score of %d/100 (%s). "+
			"The code quality is solid and the project structure is well organized, reflecting professional-level development.", score, level)
	case score >= 60:
		return fmt.Sprintf("This repository shows solid fundamentals with a score of %d/100 (%s). "+
			"The project has a good foundation; improvements to testing and documentation would bring it to professional quality.", score, level)
	case score >= 40:
		return fmt.Sprintf("This repository demonstrates basic competency with a score of %d/100 (%s). "+
			"There is clear potential here, but code quality, documentation and development practices need work.", score, level)
	default:
		return fmt.Sprintf("This repository is a good start with a score of %d/100 (%s). "+
			"Focus on the fundamentals: clean code, clear documentation and consistent git practices.", score, level)
	}
}

// fallbackRoadmap draws items from the weakest dimensions by score ratio,
// each rationale citing that dimension's own signals. Ties break on the
// fixed dimension order so output is stable.
func fallbackRoadmap(res *domain.ScoredResult) []domain.RoadmapItem {
	order := make(map[domain.Dimension]int, len(domain.Dimensions))
	for i, d := range domain.Dimensions {
		order[d] = i
	}

	var keys []domain.Dimension
	for _, d := range domain.Dimensions {
		if _, ok := res.Dimensions[d]; ok {
			keys = append(keys, d)
		}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		ri, rj := res.Dimensions[keys[i]].Ratio(), res.Dimensions[keys[j]].Ratio()
		if ri != rj {
			return ri < rj
		}
		return order[keys[i]] < order[keys[j]]
	})

	n := fallbackRoadmapSize
	if n > len(keys) {
		n = len(keys)
	}
	var roadmap []domain.RoadmapItem
	for _, d := range keys[:n] {
		item, ok := roadmapItems[d]
		if !ok {
			continue
		}
		if sigs := res.Dimensions[d].Signals; len(sigs) > 0 {
			item.Reason = fmt.Sprintf("%s (observed: %s)", item.Reason, sigs[0])
		}
		roadmap = append(roadmap, item)
	}
	if len(roadmap) == 0 {
		return Static().Roadmap
	}
	return roadmap
}
