package restapi

import (
	"net/http"

	"rti.metlink.nz/internal/models"
)

func (api *RestAPI) vehiclesHandler(w http.ResponseWriter, r *http.Request) {
	vehicles := api.Views.AllVehicleProximity()
	codes := make([]string, 0, len(vehicles))
	for _, v := range vehicles {
		codes = append(codes, v.RouteCode)
	}
	api.sendResponse(w, r, models.NewListResponse(vehicles, api.routeReferences(api.now(), codes...)))
}

func (api *RestAPI) vehicleHandler(w http.ResponseWriter, r *http.Request) {
	tripID, ok := api.pathID(w, r, "trip")
	if !ok {
		return
	}

	vehicle, err := api.Views.VehicleProximity(tripID)
	if err != nil {
		api.viewErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(vehicle, api.routeReferences(api.now(), vehicle.RouteCode)))
}
