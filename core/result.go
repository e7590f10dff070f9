package core

// QueryResult is what one execution produced: the rows in cursor order and
// the parameters as the driver left them.
type QueryResult[T any] struct {
	List       []T
	Parameters []QueryParameter
}

// Parameter finds a parameter by name, ignoring case and the @, : or $ marker.
func (r *QueryResult[T]) Parameter(name string) (QueryParameter, bool) {
	for _, p := range r.Parameters {
		if p.Matches(name) {
			return p, true
		}
	}
	return QueryParameter{}, false
}

// Output returns the final value of a parameter.
func (r *QueryResult[T]) Output(name string) (any, bool) {
	p, ok := r.Parameter(name)
	if !ok {
		return nil, false
	}
	return p.Value, true
}
