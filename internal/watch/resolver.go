package watch

// Resolver admits results in generation order. A result older than the newest
// admitted one is rejected; equal or newer results are admitted.
type Resolver struct {
	highest  Generation
	admitted int
	rejected int
}

// Admit reports whether res should replace the line buffer and, if so, records
// its generation as the highest admitted.
func (r *Resolver) Admit(res Result) bool {
	if res.Generation < r.highest {
		r.rejected++
		return false
	}
	r.highest = res.Generation
	r.admitted++
	return true
}

// Highest returns the generation of the newest admitted result, 0 if none.
func (r *Resolver) Highest() Generation {
	return r.highest
}

// Stats returns how many results were admitted and rejected.
func (r *Resolver) Stats() (admitted, rejected int) {
	return r.admitted, r.rejected
}
