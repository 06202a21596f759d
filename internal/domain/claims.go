package domain

// Claim types recognized by the session layer.
const (
	ClaimTypeName       = "name"
	ClaimTypeID         = "nameid"
	ClaimTypeAuthMethod = "amr"
	ClaimTypeRole       = "role"
)

// AuthMethodPassword marks sessions established through password logon.
const AuthMethodPassword = "password"

// Claim is a single (type, value) assertion about an authenticated principal.
type Claim struct {
	Type  string
	Value string
}

// ClaimSet is an ordered collection of claims. Order is insertion order and
// is stable across builds for the same user.
type ClaimSet struct {
	Claims []Claim
}

// Add appends a claim to the set.
func (cs *ClaimSet) Add(claimType, value string) {
	cs.Claims = append(cs.Claims, Claim{Type: claimType, Value: value})
}

// First returns the value of the first claim with the given type.
func (cs *ClaimSet) First(claimType string) (string, bool) {
	for _, c := range cs.Claims {
		if c.Type == claimType {
			return c.Value, true
		}
	}
	return "", false
}

// Values returns all values carried by claims of the given type, in order.
func (cs *ClaimSet) Values(claimType string) []string {
	var values []string
	for _, c := range cs.Claims {
		if c.Type == claimType {
			values = append(values, c.Value)
		}
	}
	return values
}
