// Package tripid decodes the conventions embedded in upstream trip ids and
// matches live predictions back to scheduled trips.
package tripid

import "strings"

// railAgencies decode their service token verbatim instead of halving it.
var railAgencies = map[string]bool{
	"RAIL": true,
	"WRL":  true,
}

// ServiceIDFromTripID derives the calendar service id encoded in a trip id.
//
// Trip ids embed the operating agency as a "__AGENCY__" token. The text after
// the token is an encoded service name followed by "_" and a variant suffix.
// Rail agencies spell the service with underscores for spaces. Other
// agencies repeat the service name twice, so only the first half is kept
// with doubled separators collapsed. The result is "<service>_<suffix>".
//
// This is a convention of the upstream feed rather than a published
// contract; the tests pin it to known trip ids.
func ServiceIDFromTripID(tripID string, knownAgencyIDs []string) (string, bool) {
	agency, rest, ok := splitAtAgency(tripID, knownAgencyIDs)
	if !ok || rest == "" {
		return "", false
	}

	encoded, suffix := rest, ""
	if idx := strings.LastIndex(rest, "_"); idx >= 0 {
		encoded, suffix = rest[:idx], rest[idx+1:]
	}

	var service string
	if railAgencies[agency] {
		service = strings.ReplaceAll(encoded, "_", " ")
	} else {
		service = encoded[:len(encoded)/2]
		for strings.Contains(service, "__") {
			service = strings.ReplaceAll(service, "__", "_")
		}
		service = strings.Trim(service, "_")
	}

	if service == "" {
		return "", false
	}
	if suffix == "" {
		return service, true
	}
	return service + "_" + suffix, true
}

// splitAtAgency finds the earliest "__AGENCY__" token in tripID. When two
// agencies match at the same position the longer id wins.
func splitAtAgency(tripID string, knownAgencyIDs []string) (agency, rest string, ok bool) {
	best := -1
	for _, id := range knownAgencyIDs {
		if id == "" {
			continue
		}
		idx := strings.Index(tripID, "__"+id+"__")
		if idx < 0 {
			continue
		}
		if best < 0 || idx < best || (idx == best && len(id) > len(agency)) {
			best, agency = idx, id
		}
	}
	if best < 0 {
		return "", "", false
	}
	return agency, tripID[best+len(agency)+4:], true
}
