// Package query composes the relevance query from a persona and a job description.
package query

// Separator joins persona and job in the query text.
const Separator = ". "

// Build returns "{persona}. {job}". Empty inputs are kept as empty strings.
func Build(persona, job string) string {
	return persona + Separator + job
}
