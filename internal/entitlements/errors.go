package entitlements

import (
	"encoding/json"
	"net/http"

	"github.com/golden-vcr/openaccess/internal/gateway"
)

// errorResponses maps each kind of gateway failure to the response we send to the
// storefront: details of unexpected upstream responses are not passed through
var errorResponses = map[gateway.ErrorKind]struct {
	status  int
	message string
}{
	gateway.KindNotLinked:          {http.StatusNotFound, "User is not linked"},
	gateway.KindClientUnauthorized: {http.StatusForbidden, "Client unauthorized"},
	gateway.KindMalformedRequest:   {http.StatusBadRequest, "Malformed request"},
	gateway.KindUpstreamUnexpected: {http.StatusInternalServerError, "Unexpected response from Spotify"},
}

func writeGatewayError(res http.ResponseWriter, err error) {
	r := errorResponses[gateway.KindOf(err)]
	writeError(res, r.status, r.message)
}

func writeError(res http.ResponseWriter, status int, message string) {
	res.Header().Set("content-type", "application/json")
	res.WriteHeader(status)
	json.NewEncoder(res).Encode(map[string]string{"error": message})
}
