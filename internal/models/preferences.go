package models

// ClassificationOrder maps a category to the user's ordered classification IDs.
type ClassificationOrder map[Category][]int64

// Preferences holds the per-user settings the tally engine consumes.
type Preferences struct {
	UserID              int64               `json:"user_id"`
	ClassificationOrder ClassificationOrder `json:"classification_order,omitempty"`
}

// OrderFor returns the custom order for a category, or nil when none is set.
func (p *Preferences) OrderFor(category Category) []int64 {
	if p == nil || p.ClassificationOrder == nil {
		return nil
	}
	return p.ClassificationOrder[category]
}
