// Package audit builds audit-trail payloads for mutating operations.
// The diff is a pure function over field snapshots — it knows nothing about
// persistence, so it can be unit-tested without a database.
package audit

// Cambio is one field-level change between two snapshots.
type Cambio struct {
	Campo   string `json:"campo"`
	Antes   string `json:"antes"`
	Despues string `json:"despues"`
}

// Diff compares two field snapshots over the given auditable field list and
// returns one Cambio per field whose value differs. Fields absent from a
// snapshot compare as the empty string, so additions and removals show up as
// changes too. The order of campos is preserved in the result.
func Diff(antes, despues map[string]string, campos []string) []Cambio {
	var cambios []Cambio
	for _, campo := range campos {
		a := antes[campo]
		d := despues[campo]
		if a == d {
			continue
		}
		cambios = append(cambios, Cambio{Campo: campo, Antes: a, Despues: d})
	}
	return cambios
}
