package handlers

import (
	"net/http"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/addisfuel/fuelwatch/models"
)

// StationsGeoJSON serves all active stations as a GeoJSON FeatureCollection
// for the portal map. Each feature carries the current availability per fuel
// type so markers can be colored without extra round trips.
func (a *App) StationsGeoJSON(w http.ResponseWriter, r *http.Request) {
	var stations []models.Station
	if err := a.DB.Where("is_active = ?", true).Find(&stations).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var statuses []models.FuelStatus
	if err := a.DB.Find(&statuses).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	byStation := make(map[string]map[string]interface{})
	for _, fs := range statuses {
		key := fs.StationID.String()
		if byStation[key] == nil {
			byStation[key] = map[string]interface{}{}
		}
		byStation[key][string(fs.FuelType)] = map[string]interface{}{
			"status":     fs.Status,
			"queueLevel": fs.QueueLevel,
			"trustScore": fs.TrustScore,
		}
	}

	fc := geojson.NewFeatureCollection()
	for _, station := range stations {
		feature := geojson.NewFeature(orb.Point{station.Longitude, station.Latitude})
		feature.Properties["id"] = station.ID.String()
		feature.Properties["name"] = station.Name
		feature.Properties["code"] = station.Code
		feature.Properties["address"] = station.Address
		if fuel, ok := byStation[station.ID.String()]; ok {
			feature.Properties["fuel"] = fuel
		}
		fc.Append(feature)
	}

	writeJSON(w, http.StatusOK, fc)
}
