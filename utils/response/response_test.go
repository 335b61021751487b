package response

import "testing"

func TestCalculatePagination(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		limit      int
		total      int64
		wantPage   int
		wantLimit  int
		wantPages  int
	}{
		{"exact multiple", 1, 20, 40, 1, 20, 2},
		{"partial last page", 2, 20, 45, 2, 20, 3},
		{"empty result", 1, 20, 0, 1, 20, 0},
		{"page floor", 0, 20, 10, 1, 20, 1},
		{"limit floor", 1, 0, 25, 1, 10, 3},
		{"limit cap", 1, 500, 250, 1, 100, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := CalculatePagination(tt.page, tt.limit, tt.total)
			if meta.CurrentPage != tt.wantPage {
				t.Errorf("CurrentPage = %d, want %d", meta.CurrentPage, tt.wantPage)
			}
			if meta.PerPage != tt.wantLimit {
				t.Errorf("PerPage = %d, want %d", meta.PerPage, tt.wantLimit)
			}
			if meta.Total != tt.total {
				t.Errorf("Total = %d, want %d", meta.Total, tt.total)
			}
			if meta.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", meta.TotalPages, tt.wantPages)
			}
		})
	}
}
