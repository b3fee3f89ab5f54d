package analytics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/faturas-analytics/internal/domain/analytics"
	"github.com/jhoicas/faturas-analytics/internal/domain/entity"
)

func TestBuildHeatmap_CeldasYPicos(t *testing.T) {
	monday := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	invs := []entity.Invoice{
		invoice(monday, "09:10", "10"),
		invoice(monday, "09:50", "10"),
		invoice(monday, "09:55", "10"),
		invoice(sunday, "20:00", "100"),
	}

	hm := analytics.BuildHeatmap(invs, analytics.MondayFirst)

	require.Len(t, hm.Cells, 2)
	assert.Equal(t, 9, hm.Cells[0].Hour)
	assert.Equal(t, 0, hm.Cells[0].Weekday, "lunes = 0")
	assert.Equal(t, 3, hm.Cells[0].Count)
	assertDec(t, "10", hm.Cells[0].AverageTicket())
	assert.Equal(t, 6, hm.Cells[1].Weekday, "domingo = 6")

	require.NotNil(t, hm.PeakByVolume)
	require.NotNil(t, hm.PeakByCount)
	assert.Equal(t, 20, hm.PeakByVolume.Hour)
	assert.Equal(t, 9, hm.PeakByCount.Hour)
	assert.Equal(t, 4, hm.TotalCount)
	assertDec(t, "130", hm.TotalVolume)
}

func TestBuildHeatmap_EmpateGanaPrimeraCelda(t *testing.T) {
	tuesday := time.Date(2026, 10, 13, 0, 0, 0, 0, time.UTC)
	monday := tuesday.AddDate(0, 0, -1)
	invs := []entity.Invoice{
		invoice(tuesday, "08:00", "40"),
		invoice(monday, "08:00", "40"),
		invoice(monday, "07:00", "40"),
	}

	hm := analytics.BuildHeatmap(invs, analytics.MondayFirst)

	require.NotNil(t, hm.PeakByVolume)
	assert.Equal(t, 7, hm.PeakByVolume.Hour)
	assert.Equal(t, 0, hm.PeakByVolume.Weekday)
	assert.Equal(t, 7, hm.PeakByCount.Hour)
}

func TestBuildHeatmap_HoraSinDosPuntosSeDescarta(t *testing.T) {
	invs := []entity.Invoice{
		invoice(refDay, "10", "5"),
		invoice(refDay, "", "5"),
		invoice(refDay, "xx:10", "5"),
		invoice(refDay, "10:00", "5"),
		invoice(refDay, "11:00", "5"),
	}

	hm := analytics.BuildHeatmap(invs, analytics.MondayFirst)

	total := 0
	for _, c := range hm.Cells {
		total += c.Count
	}
	assert.Equal(t, 2, total, "solo cuentan las facturas con fecha y hora bien formadas")
	assert.Equal(t, 2, hm.TotalCount)
}

func TestBuildHeatmap_SinFacturasNoHayPicos(t *testing.T) {
	hm := analytics.BuildHeatmap(nil, analytics.MondayFirst)

	assert.Empty(t, hm.Cells)
	assert.Nil(t, hm.PeakByVolume)
	assert.Nil(t, hm.PeakByCount)
}

func TestBuildHeatmap_OrdenDomingoPrimero(t *testing.T) {
	sunday := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

	hm := analytics.BuildHeatmap([]entity.Invoice{invoice(sunday, "10:00", "1")}, analytics.SundayFirst)

	require.Len(t, hm.Cells, 1)
	assert.Equal(t, 0, hm.Cells[0].Weekday)
}

func TestHeatmap_Top(t *testing.T) {
	invs := []entity.Invoice{
		invoice(refDay, "08:00", "1"),
		invoice(refDay, "09:00", "30"),
		invoice(refDay, "10:00", "20"),
	}
	hm := analytics.BuildHeatmap(invs, analytics.MondayFirst)

	top := hm.Top(2)

	require.Len(t, top, 2)
	assert.Equal(t, 9, top[0].Hour)
	assert.Equal(t, 10, top[1].Hour)
	assert.Equal(t, 8, hm.Cells[0].Hour, "Top no altera el orden original")
}
