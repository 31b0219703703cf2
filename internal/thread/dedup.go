package thread

import (
	"github.com/rumahkita/rumahkita-backend/internal/models"
)

// DeduplicateByListing collapses an inquiry list to one record per distinct
// listing: the backend may expose several historical inquiry rows for the
// same property, but the manager view shows a single merged thread per
// listing. First occurrence wins; relative order is otherwise preserved.
func DeduplicateByListing(inquiries []models.Inquiry) []models.Inquiry {
	seen := make(map[uint]bool, len(inquiries))
	out := make([]models.Inquiry, 0, len(inquiries))
	for _, inq := range inquiries {
		if seen[inq.PropertyID] {
			continue
		}
		seen[inq.PropertyID] = true
		out = append(out, inq)
	}
	return out
}

// DeduplicateListItems is DeduplicateByListing over list-view rows.
func DeduplicateListItems(items []models.InquiryListItem) []models.InquiryListItem {
	seen := make(map[uint]bool, len(items))
	out := make([]models.InquiryListItem, 0, len(items))
	for _, item := range items {
		if seen[item.PropertyID] {
			continue
		}
		seen[item.PropertyID] = true
		out = append(out, item)
	}
	return out
}
