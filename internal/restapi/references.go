package restapi

import (
	"time"

	"rti.metlink.nz/internal/models"
)

// routeReferences collects the routes named by code, their agencies and the
// alerts active on them.
func (api *RestAPI) routeReferences(now time.Time, codes ...string) models.ReferencesModel {
	refs := models.NewEmptyReferences()
	s := api.GtfsManager.Snapshot()

	routes := map[string]bool{}
	agencies := map[string]bool{}
	for _, code := range codes {
		if routes[code] {
			continue
		}
		route, ok := s.RouteByCode(code)
		if !ok {
			continue
		}
		routes[code] = true
		agencies[route.AgencyID] = true
		refs.Routes = append(refs.Routes, models.Route{
			ID:       route.ID,
			AgencyID: route.AgencyID,
			Code:     route.Code,
			LongName: route.LongName,
			Type:     route.Type,
		})
	}

	for _, a := range s.Agencies() {
		if agencies[a.ID] {
			refs.Agencies = append(refs.Agencies, models.Agency{ID: a.ID, Name: a.Name, URL: a.URL, Timezone: a.Timezone})
		}
	}

	for _, alert := range api.Views.Alerts(now) {
		for _, code := range alert.Routes {
			if routes[code] {
				refs.Situations = append(refs.Situations, alert)
				break
			}
		}
	}
	return refs
}
