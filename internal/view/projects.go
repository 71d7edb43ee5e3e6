package view

import (
	"strings"

	"vanta-site/internal/domain"
)

func Projects(all []domain.Project, category string) []domain.Project {
	category = strings.TrimSpace(category)
	if category == "" || strings.EqualFold(category, domain.CategoryAll) {
		return all
	}

	out := make([]domain.Project, 0, len(all))
	for _, p := range all {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}
