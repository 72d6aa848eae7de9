package service

import (
	"testing"
	"time"
)

// TestOverdueFee проверяет расчёт штрафа: тариф за каждый начатый день
// просрочки, возврат в срок — без штрафа.
func TestOverdueFee(t *testing.T) {
	s := &CirculationService{feePerDay: 1.0}
	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		returnDate time.Time
		want       float64
	}{
		{
			name:       "возврат до срока",
			returnDate: due.Add(-24 * time.Hour),
			want:       0,
		},
		{
			name:       "возврат точно в срок",
			returnDate: due,
			want:       0,
		},
		{
			name:       "просрочка один день",
			returnDate: due.Add(24 * time.Hour),
			want:       1,
		},
		{
			name:       "просрочка два с половиной дня — округление вверх",
			returnDate: due.Add(60 * time.Hour),
			want:       3,
		},
		{
			name:       "просрочка один час — начатый день",
			returnDate: due.Add(time.Hour),
			want:       1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.overdueFee(due, tt.returnDate); got != tt.want {
				t.Errorf("overdueFee = %v, ожидалось %v", got, tt.want)
			}
		})
	}
}

// TestOverdueFee_Rate проверяет применение тарифа из конфигурации.
func TestOverdueFee_Rate(t *testing.T) {
	s := &CirculationService{feePerDay: 2.5}
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	got := s.overdueFee(due, due.Add(48*time.Hour))
	if got != 5 {
		t.Errorf("overdueFee = %v, ожидалось 5", got)
	}
}
