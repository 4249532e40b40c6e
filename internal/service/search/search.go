package search

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/kasnew/service-center-app-AI-PC-APK-sub000/internal/storage"
)

// FallbackWindow is how many recent repairs the fuzzy fallback looks at.
const FallbackWindow = 500

type Storage interface {
	ListRepairs(ctx context.Context, f storage.RepairFilter) ([]storage.Repair, error)
}

type SearchService struct {
	storage Storage
}

func NewSearchService(storage Storage) *SearchService {
	return &SearchService{storage: storage}
}

// Repairs runs the SQL search. When a non-empty query finds nothing at all it
// widens to the most recent repairs and matches them fuzzily.
func (s *SearchService) Repairs(ctx context.Context, f storage.RepairFilter) ([]storage.Repair, error) {
	const op = "service.search.Repairs"

	repairs, err := s.storage.ListRepairs(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := strings.TrimSpace(f.Search)
	if len(repairs) > 0 || query == "" {
		return repairs, nil
	}

	// пустая страница после настоящих совпадений: конец выдачи, не повод для нечёткого поиска
	if f.Offset > 0 {
		first := f
		first.Offset = 0
		first.Limit = 1
		hits, err := s.storage.ListRepairs(ctx, first)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if len(hits) > 0 {
			return []storage.Repair{}, nil
		}
	}

	wide := f
	wide.Search = ""
	wide.Limit = FallbackWindow
	wide.Offset = 0

	recent, err := s.storage.ListRepairs(ctx, wide)
	if err != nil {
		return nil, fmt.Errorf("%s: fallback: %w", op, err)
	}

	matched := Fuzzy(recent, query)
	if f.Offset > 0 {
		if f.Offset >= len(matched) {
			return []storage.Repair{}, nil
		}
		matched = matched[f.Offset:]
	}
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}

	return matched, nil
}

// Fuzzy keeps repairs where the query is a subsequence of one of the searched
// fields (case and diacritics folded), best Levenshtein rank first.
func Fuzzy(repairs []storage.Repair, query string) []storage.Repair {
	type ranked struct {
		repair storage.Repair
		rank   int
	}

	query = strings.TrimSpace(query)
	var hits []ranked
	for _, r := range repairs {
		best := -1
		for _, field := range fields(r) {
			if field == "" {
				continue
			}
			rank := fuzzy.RankMatchNormalizedFold(query, field)
			if rank >= 0 && (best < 0 || rank < best) {
				best = rank
			}
		}
		if best >= 0 {
			hits = append(hits, ranked{repair: r, rank: best})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].rank < hits[j].rank })

	out := make([]storage.Repair, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.repair)
	}

	return out
}

func fields(r storage.Repair) []string {
	return []string{r.ClientName, r.ClientPhone, r.DeviceName, strconv.FormatInt(r.ReceiptID, 10), r.Note}
}
