// Package reports builds the operational KPI export from the orders
// collection.
package reports

import (
	"bytes"
	"encoding/csv"
	"time"

	"fleet-dispatch-api-server/internal/models"
)

var kpiHeader = []string{
	"servicio", "fecha_creacion", "origen", "destino", "prioridad",
	"matricula", "proyecto", "estado", "conductor", "fecha_asignacion",
}

const timeLayout = "2006-01-02 15:04:05"

// BuildKPICSV renders one row per order, newest first as given.
// driverNames maps driver hex id to display name; unknown ids fall back to
// the raw id so the row is still attributable.
func BuildKPICSV(orders []models.Order, driverNames map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(kpiHeader); err != nil {
		return nil, err
	}

	for i := range orders {
		o := &orders[i]

		driver := ""
		if o.DriverID != nil {
			id := o.DriverID.Hex()
			if name, ok := driverNames[id]; ok && name != "" {
				driver = name
			} else {
				driver = id
			}
		}

		assignedAt := ""
		if o.AssignedAt != nil {
			assignedAt = o.AssignedAt.UTC().Format(timeLayout)
		}

		record := []string{
			o.ShortID(),
			o.CreatedAt.UTC().Format(timeLayout),
			o.Origin,
			o.Destination,
			o.Priority,
			o.Plate,
			o.Project,
			o.Status,
			driver,
			assignedAt,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ObjectKey names an archived report, one per export.
func ObjectKey(now time.Time) string {
	return "reports/kpis-" + now.UTC().Format("20060102-150405") + ".csv"
}
