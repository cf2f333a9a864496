package restapi

import (
	"net/http"

	"console.busfleet.org/internal/models"
)

// routesHandler serves the route list backing the filter dropdown.
func (api *RestAPI) routesHandler(w http.ResponseWriter, r *http.Request) {
	routes, err := api.Reference.Routes(r.Context())
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	data := struct {
		Routes []models.Route `json:"routes"`
	}{Routes: routes}

	api.sendResponse(w, r, models.NewOKResponse(data, api.Clock))
}

// companiesHandler serves the operator list backing the filter dropdown.
func (api *RestAPI) companiesHandler(w http.ResponseWriter, r *http.Request) {
	companies, err := api.Reference.Companies(r.Context())
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	data := struct {
		Companies []models.Company `json:"companies"`
	}{Companies: companies}

	api.sendResponse(w, r, models.NewOKResponse(data, api.Clock))
}
