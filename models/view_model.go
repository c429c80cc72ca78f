package models

// ViewModel is the list a client renders: the raw set after client-side filters,
// in server order.
type ViewModel struct {
	Establishments []Establishment `json:"establishments"`
}

func (v ViewModel) Len() int { return len(v.Establishments) }
