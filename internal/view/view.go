// Package view turns full collection snapshots into the payloads the
// dashboard renders. The reducers are pure: they never touch the store, so
// they do not care how the snapshot was delivered.
package view

import (
	"strings"

	"fleet-dispatch-api-server/internal/models"
)

// Marker operations sent to the map layer. The reducer diffs the snapshot
// against the previous marker positions, so the client applies a minimal
// set of changes instead of rebuilding the layer.
const (
	MarkerAdd    = "add"
	MarkerMove   = "move"
	MarkerRemove = "remove"
)

type MarkerOp struct {
	Op       string  `json:"op"`
	DriverID string  `json:"driverId"`
	Lat      float64 `json:"lat,omitempty"`
	Lon      float64 `json:"lon,omitempty"`
	Label    string  `json:"label,omitempty"`
	Plate    string  `json:"plate,omitempty"`
}

type Coord struct {
	Lat float64
	Lon float64
}

// MarkerState maps driver id to the last position sent to clients. It is
// the only state the driver reducer carries between snapshots.
type MarkerState map[string]Coord

// Status badges for the driver list.
const (
	BadgeFree  = "status-libre"
	BadgeBusy  = "status-ocupado"
	BadgeOther = "status-otros"
)

type DriverRow struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	TractorPlate   string `json:"tractorPlate"`
	CurrentPlate   string `json:"currentPlate"`
	CurrentProject string `json:"currentProject"`
	Status         string `json:"status"`
	Badge          string `json:"badge"`
	ActiveOrderID  string `json:"activeOrderId,omitempty"`
}

type DriversPayload struct {
	Rows      []DriverRow `json:"rows"`
	FreeCount int         `json:"freeCount"`
	Markers   []MarkerOp  `json:"markers"`
}

// ReduceDrivers rebuilds the driver list from a full snapshot and diffs the
// marker layer against prev. Drivers without a resolvable position get no
// marker; markers for drivers missing from the snapshot are removed.
func ReduceDrivers(prev MarkerState, drivers []models.Driver) (MarkerState, DriversPayload) {
	next := make(MarkerState, len(drivers))
	payload := DriversPayload{Rows: make([]DriverRow, 0, len(drivers))}

	for _, d := range drivers {
		id := d.ID.Hex()

		row := DriverRow{
			ID:             id,
			Name:           d.Name,
			TractorPlate:   d.TractorPlate,
			CurrentPlate:   d.CurrentPlate,
			CurrentProject: d.CurrentProject,
			Status:         d.Status,
			Badge:          statusBadge(d.Status),
		}
		if d.ActiveOrderID != nil {
			row.ActiveOrderID = d.ActiveOrderID.Hex()
		}
		payload.Rows = append(payload.Rows, row)

		if d.IsFree() {
			payload.FreeCount++
		}

		lat, lon, ok := d.LatLon()
		if !ok {
			continue
		}
		next[id] = Coord{Lat: lat, Lon: lon}

		old, existed := prev[id]
		switch {
		case !existed:
			payload.Markers = append(payload.Markers, MarkerOp{
				Op: MarkerAdd, DriverID: id, Lat: lat, Lon: lon,
				Label: d.Name, Plate: d.TractorPlate,
			})
		case old.Lat != lat || old.Lon != lon:
			payload.Markers = append(payload.Markers, MarkerOp{
				Op: MarkerMove, DriverID: id, Lat: lat, Lon: lon,
			})
		}
	}

	// Set-difference: markers whose driver (or position) disappeared.
	for id := range prev {
		if _, still := next[id]; !still {
			payload.Markers = append(payload.Markers, MarkerOp{Op: MarkerRemove, DriverID: id})
		}
	}

	return next, payload
}

type OrderRow struct {
	ID          string `json:"id"`
	ShortID     string `json:"shortId"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Priority    string `json:"priority"`
	Plate       string `json:"plate"`
	Project     string `json:"project"`
	Status      string `json:"status"`
	DriverID    string `json:"driverId,omitempty"`
	CanAssign   bool   `json:"canAssign"`
}

type OrdersPayload struct {
	Rows   []OrderRow `json:"rows"`
	Total  int        `json:"total"`
	Active int        `json:"active"` // everything not yet finalized
}

// ReduceOrders rebuilds the order list from a full snapshot. Input order is
// preserved (the store already sorts newest first). The assign action is
// offered only for pending orders.
func ReduceOrders(orders []models.Order) OrdersPayload {
	payload := OrdersPayload{Rows: make([]OrderRow, 0, len(orders))}

	for i := range orders {
		o := &orders[i]
		payload.Total++
		if !o.IsFinalized() {
			payload.Active++
		}

		row := OrderRow{
			ID:          o.ID.Hex(),
			ShortID:     o.ShortID(),
			Origin:      o.Origin,
			Destination: o.Destination,
			Priority:    o.Priority,
			Plate:       o.Plate,
			Project:     o.Project,
			Status:      o.Status,
			CanAssign:   o.IsPending(),
		}
		if o.DriverID != nil {
			row.DriverID = o.DriverID.Hex()
		}
		payload.Rows = append(payload.Rows, row)
	}

	return payload
}

func statusBadge(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case models.DriverStatusFree:
		return BadgeFree
	case models.DriverStatusBusy:
		return BadgeBusy
	default:
		return BadgeOther
	}
}
