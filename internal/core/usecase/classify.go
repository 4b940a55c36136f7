package usecase

import (
	"strings"

	"github.com/kirillkom/scadenze/internal/core/domain"
)

// Classify maps a document to the first category whose keyword occurs in its
// type, name and summary. Rules are scanned in declaration order.
func Classify(doc domain.Document) domain.Category {
	corpus := strings.ToLower(strings.Join([]string{doc.Type, doc.Name, doc.Summary()}, " "))
	for _, rule := range domain.CategoryRules() {
		for _, keyword := range rule.Keywords {
			if strings.Contains(corpus, keyword) {
				return rule.Category
			}
		}
	}
	return domain.CategoryOther
}

// GroupByCategory buckets documents by Classify, keeping input order inside each
// bucket. Only non-empty buckets are returned, in category display order.
func GroupByCategory(docs []domain.Document) []domain.CategoryGroup {
	buckets := make(map[domain.Category][]domain.Document)
	for _, doc := range docs {
		category := Classify(doc)
		buckets[category] = append(buckets[category], doc)
	}

	groups := make([]domain.CategoryGroup, 0, len(buckets))
	for _, category := range domain.Categories() {
		bucket, ok := buckets[category]
		if !ok {
			continue
		}
		groups = append(groups, domain.CategoryGroup{
			Category:  category,
			Label:     category.Label(),
			Documents: bucket,
		})
	}
	return groups
}
